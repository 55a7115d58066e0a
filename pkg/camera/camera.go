// Package camera provides the frame sources the monitor reads from.
//
// A Capture yields frames until it reports ErrEndOfStream or a read error.
// Nothing here retries: the first failure belongs to the caller.
package camera

import (
	"DrowsyWatch/internal/entity"
	"errors"
	"golang.org/x/net/context"
	"image"

	"golang.org/x/image/draw"
)

var (
	ErrCaptureUnavailable = errors.New("capture unavailable")
	ErrCaptureRead        = errors.New("capture read failure")
	ErrEndOfStream        = errors.New("end of stream")
	ErrCaptureClosed      = errors.New("capture closed")
)

type Capture interface {
	ReadFrame(ctx context.Context) (entity.Frame, error)
	Close() error
}

type Opener interface {
	Open(ctx context.Context, deviceID string, width, height int) (Capture, error)
}

// scale resizes img to width x height. Non-positive dimensions, or an image
// that already has the requested size, are returned unchanged.
func scale(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return img
	}

	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

package camera

import (
	"fmt"
	"golang.org/x/net/context"
	"os"
	"strings"
)

// Registry picks a source from the form of the device id: http(s) URLs are
// MJPEG cameras, existing directories are replayed as stills.
type Registry struct {
	MJPEG     Opener
	Directory Opener
}

func NewRegistry(loopDirectory bool) *Registry {
	return &Registry{
		MJPEG:     NewMJPEGOpener(),
		Directory: &DirectoryOpener{Loop: loopDirectory},
	}
}

func (r *Registry) Open(ctx context.Context, deviceID string, width, height int) (Capture, error) {
	if isStreamURL(deviceID) {
		return r.MJPEG.Open(ctx, deviceID, width, height)
	}

	if isDirectory(deviceID) {
		return r.Directory.Open(ctx, deviceID, width, height)
	}

	return nil, fmt.Errorf("%w: no capture backend for device %q", ErrCaptureUnavailable, deviceID)
}

// Supports reports whether Open has a backend for deviceID. A directory that
// does not exist yet counts as unsupported.
func (r *Registry) Supports(deviceID string) bool {
	return isStreamURL(deviceID) || isDirectory(deviceID)
}

func isStreamURL(deviceID string) bool {
	return strings.HasPrefix(deviceID, "http://") || strings.HasPrefix(deviceID, "https://")
}

func isDirectory(deviceID string) bool {
	info, err := os.Stat(deviceID)
	return err == nil && info.IsDir()
}

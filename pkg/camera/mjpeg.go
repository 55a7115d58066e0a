package camera

import (
	"DrowsyWatch/internal/entity"
	"errors"
	"fmt"
	"golang.org/x/net/context"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MJPEGOpener opens network cameras that serve multipart/x-mixed-replace
// JPEG streams.
type MJPEGOpener struct {
	Client *http.Client
}

func NewMJPEGOpener() *MJPEGOpener {
	return &MJPEGOpener{
		Client: &http.Client{},
	}
}

type mjpegCapture struct {
	body   io.ReadCloser
	reader *multipart.Reader
	width  int
	height int
	seq    uint64
	once   sync.Once
}

func (o *MJPEGOpener) Open(ctx context.Context, deviceID string, width, height int) (Capture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deviceID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: camera responded with status %d", ErrCaptureUnavailable, resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: camera did not return a multipart stream", ErrCaptureUnavailable)
	}

	boundary := strings.TrimPrefix(params["boundary"], "--")
	if boundary == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: multipart stream without boundary", ErrCaptureUnavailable)
	}

	return &mjpegCapture{
		body:   resp.Body,
		reader: multipart.NewReader(resp.Body, boundary),
		width:  width,
		height: height,
	}, nil
}

func (c *mjpegCapture) ReadFrame(ctx context.Context) (entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}

	part, err := c.reader.NextPart()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return entity.Frame{}, ErrEndOfStream
		}
		return entity.Frame{}, fmt.Errorf("%w: %v", ErrCaptureRead, err)
	}
	defer part.Close()

	img, err := jpeg.Decode(part)
	if err != nil {
		return entity.Frame{}, fmt.Errorf("%w: %v", ErrCaptureRead, err)
	}

	c.seq++
	return entity.Frame{
		Seq:       c.seq,
		Timestamp: time.Now(),
		Image:     scale(img, c.width, c.height),
	}, nil
}

func (c *mjpegCapture) Close() error {
	var err error
	c.once.Do(func() {
		err = c.body.Close()
	})
	return err
}

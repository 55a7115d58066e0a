package camera

import (
	"DrowsyWatch/internal/entity"
	"fmt"
	"golang.org/x/net/context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DirectoryOpener replays the still images of a directory as a camera.
type DirectoryOpener struct {
	Loop bool
}

type directoryCapture struct {
	files  []string
	loop   bool
	width  int
	height int
	next   int
	seq    uint64
	mu     sync.Mutex
	closed bool
}

func (o *DirectoryOpener) Open(ctx context.Context, deviceID string, width, height int) (Capture, error) {
	entries, err := os.ReadDir(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(deviceID, entry.Name()))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrCaptureUnavailable, deviceID)
	}
	sort.Strings(files)

	return &directoryCapture{
		files:  files,
		loop:   o.Loop,
		width:  width,
		height: height,
	}, nil
}

func (c *directoryCapture) ReadFrame(ctx context.Context) (entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return entity.Frame{}, ErrCaptureClosed
	}

	if c.next >= len(c.files) {
		if !c.loop {
			return entity.Frame{}, ErrEndOfStream
		}
		c.next = 0
	}

	name := c.files[c.next]
	c.next++

	f, err := os.Open(name)
	if err != nil {
		return entity.Frame{}, fmt.Errorf("%w: %v", ErrCaptureRead, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return entity.Frame{}, fmt.Errorf("%w: decode %s: %v", ErrCaptureRead, filepath.Base(name), err)
	}

	c.seq++
	return entity.Frame{
		Seq:       c.seq,
		Timestamp: time.Now(),
		Image:     scale(img, c.width, c.height),
	}, nil
}

func (c *directoryCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

package monitorService

import (
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/camera"
	"golang.org/x/net/context"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"
)

var epoch = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newManualClock() *manualClock {
	return &manualClock{now: epoch}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *manualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// fakeCapture hands out gray frames and moves the clock forward by step on
// every read, like a camera delivering one frame per step.
type fakeCapture struct {
	mu      sync.Mutex
	clock   *manualClock
	step    time.Duration
	limit   int
	readErr error
	seq     uint64
	closed  int
}

func newFakeCapture(clock *manualClock, step time.Duration) *fakeCapture {
	return &fakeCapture{clock: clock, step: step}
}

func (c *fakeCapture) ReadFrame(ctx context.Context) (entity.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return entity.Frame{}, err
	}
	if c.closed > 0 {
		return entity.Frame{}, camera.ErrCaptureClosed
	}
	if c.readErr != nil {
		return entity.Frame{}, c.readErr
	}
	if c.limit > 0 && int(c.seq) >= c.limit {
		return entity.Frame{}, camera.ErrEndOfStream
	}

	frame := entity.Frame{
		Seq:       c.seq,
		Timestamp: c.clock.Now(),
		Image:     grayImage(160, 120),
	}
	c.seq++
	c.clock.Advance(c.step)
	return frame, nil
}

func (c *fakeCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeCapture) Reads() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

func (c *fakeCapture) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeOpener struct {
	capture *fakeCapture
	err     error
	opened  int
}

func (o *fakeOpener) Open(ctx context.Context, deviceID string, width, height int) (camera.Capture, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++
	return o.capture, nil
}

type scriptedClassifier struct {
	present func(seq uint64) bool
	err     error
	calls   int
}

func (c *scriptedClassifier) IsFacePresent(ctx context.Context, frame entity.Frame) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.present(frame.Seq), nil
}

func alwaysPresent(uint64) bool { return true }

func alwaysAbsent(uint64) bool { return false }

// sleepHookClock runs onSleep before every rest, while the monitor is
// already Resting.
type sleepHookClock struct {
	*manualClock
	onSleep func(d time.Duration)
}

func (c *sleepHookClock) Sleep(ctx context.Context, d time.Duration) error {
	c.onSleep(d)
	return c.manualClock.Sleep(ctx, d)
}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 128, G: 128, B: 128, A: 255}), image.Point{}, draw.Src)
	return img
}

func hasColor(img image.Image, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(bl>>8) == want.B {
				return true
			}
		}
	}
	return false
}

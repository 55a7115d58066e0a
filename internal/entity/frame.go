package entity

import (
	"image"
	"time"
)

// Frame is one still captured from a camera.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Image     image.Image
}

func (f Frame) IsZero() bool {
	return f.Image == nil
}

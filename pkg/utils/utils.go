package utils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"image"
	"image/jpeg"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrEmptyImage = errors.New("cannot encode an empty image")

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	EncodeJPEG(img image.Image) ([]byte, error)
}

type utils struct {
	jpegQuality int
}

func New() IUtils {
	return NewWithQuality(jpeg.DefaultQuality)
}

func NewWithQuality(quality int) IUtils {
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &utils{
		jpegQuality: quality,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) EncodeJPEG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: u.jpegQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

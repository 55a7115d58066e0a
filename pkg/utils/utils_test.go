package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"
	"time"
)

func TestEncodeJPEG(t *testing.T) {
	u := New()

	data, err := u.EncodeJPEG(image.NewRGBA(image.Rect(0, 0, 8, 6)))
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("expected 8x6, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeJPEGRejectsEmpty(t *testing.T) {
	u := New()

	if _, err := u.EncodeJPEG(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil image: expected ErrEmptyImage, got %v", err)
	}
	if _, err := u.EncodeJPEG(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("zero-size image: expected ErrEmptyImage, got %v", err)
	}
}

func TestNewULIDFromTimestampIsOrdered(t *testing.T) {
	u := New()
	now := time.Now()

	first, err := u.NewULIDFromTimestamp(now)
	if err != nil {
		t.Fatal(err)
	}
	second, err := u.NewULIDFromTimestamp(now.Add(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 26 {
		t.Errorf("expected 26 character ULID, got %q", first)
	}
	if first >= second {
		t.Errorf("expected %s < %s", first, second)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cam-1", "cam-1"},
		{"cam/1", "cam_1"},
		{"http://cam.local/mjpeg", "http___cam_local_mjpeg"},
		{"câmera_é", "camera_e"},
		{"", "default"},
	}

	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package monitor

import (
	"DrowsyWatch/internal/entity"
	"time"
)

// ServerPort is fixed; only the bind host is configurable.
const ServerPort = 5000

const (
	DefaultHostAddress     = "172.16.63.142"
	DefaultCameraDeviceID  = "0"
	DefaultFrameWidth      = 640
	DefaultFrameHeight     = 480
	DefaultWorkingDuration = 15 * time.Second
	DefaultAlarmDuration   = 5 * time.Second
	DefaultRestDuration    = 2 * time.Second
	DefaultPartContentType = "text/plain"
	StreamBoundary         = "frame"
)

// Settings is the process-wide monitoring configuration. It is read once at
// startup and never mutated.
type Settings struct {
	HostAddress     string `validate:"required"`
	CameraDeviceID  string `validate:"required"`
	FrameWidth      int    `validate:"gte=0"`
	FrameHeight     int    `validate:"gte=0"`
	LoopDirectory   bool
	Session         entity.SessionConfig
	PartContentType string        `validate:"required"`
	JPEGQuality     int           `validate:"gte=1,lte=100"`
	VerdictTTL      time.Duration `validate:"gte=0"`
}

func DefaultSettings() Settings {
	return Settings{
		HostAddress:    DefaultHostAddress,
		CameraDeviceID: DefaultCameraDeviceID,
		FrameWidth:     DefaultFrameWidth,
		FrameHeight:    DefaultFrameHeight,
		Session: entity.SessionConfig{
			WorkingDuration: DefaultWorkingDuration,
			AlarmDuration:   DefaultAlarmDuration,
			RestDuration:    DefaultRestDuration,
		},
		PartContentType: DefaultPartContentType,
		JPEGQuality:     80,
		VerdictTTL:      10 * time.Minute,
	}
}

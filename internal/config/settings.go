package config

import (
	"DrowsyWatch/internal/api/monitor"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LoadSettings builds the monitor settings from the environment on top of
// the reference defaults. Durations accept plain seconds ("15", "0.5") or Go
// duration strings ("1m30s").
func LoadSettings(v *validator.Validate) (monitor.Settings, error) {
	settings := monitor.DefaultSettings()

	settings.HostAddress = envString("HOST_ADDRESS", settings.HostAddress)
	settings.CameraDeviceID = envString("CAMERA_DEVICE_ID", settings.CameraDeviceID)
	settings.PartContentType = envString("STREAM_PART_CONTENT_TYPE", settings.PartContentType)

	var err error
	if settings.FrameWidth, err = envInt("FRAME_WIDTH", settings.FrameWidth); err != nil {
		return monitor.Settings{}, err
	}
	if settings.FrameHeight, err = envInt("FRAME_HEIGHT", settings.FrameHeight); err != nil {
		return monitor.Settings{}, err
	}
	if settings.JPEGQuality, err = envInt("JPEG_QUALITY", settings.JPEGQuality); err != nil {
		return monitor.Settings{}, err
	}
	if settings.LoopDirectory, err = envBool("CAMERA_LOOP", settings.LoopDirectory); err != nil {
		return monitor.Settings{}, err
	}

	session := &settings.Session
	if session.WorkingDuration, err = envDuration("WORKING_DURATION", session.WorkingDuration); err != nil {
		return monitor.Settings{}, err
	}
	if session.AlarmDuration, err = envDuration("ALARM_DURATION", session.AlarmDuration); err != nil {
		return monitor.Settings{}, err
	}
	if session.RestDuration, err = envDuration("SLEEPING_DURATION", session.RestDuration); err != nil {
		return monitor.Settings{}, err
	}
	if settings.VerdictTTL, err = envDuration("VERDICT_TTL", settings.VerdictTTL); err != nil {
		return monitor.Settings{}, err
	}

	if err := v.Struct(settings); err != nil {
		return monitor.Settings{}, fmt.Errorf("%w: %v", monitor.ErrInvalidConfiguration, err)
	}

	return settings, nil
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", monitor.ErrInvalidConfiguration, key, raw)
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", monitor.ErrInvalidConfiguration, key, raw)
	}
	return value, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	d, err := parseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", monitor.ErrInvalidConfiguration, key, raw, err)
	}
	return d, nil
}

func parseDuration(raw string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

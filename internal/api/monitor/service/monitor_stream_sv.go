package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	contextPkg "DrowsyWatch/pkg/context"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"sync/atomic"
	"time"
)

// OpenStream opens the configured camera and builds a fresh monitor for one
// viewer. The capture is opened here so an unavailable camera is reported
// before any response body is written.
func (s *monitorService) OpenStream(ctx context.Context) (*Stream, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.isClosed() {
		return nil, monitor.ErrServiceClosed
	}

	streamID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate stream ULID")
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"stream_id":  streamID,
		"device_id":  s.settings.CameraDeviceID,
	})

	capture, err := s.opener.Open(ctx, s.settings.CameraDeviceID, s.settings.FrameWidth, s.settings.FrameHeight)
	if err != nil {
		entry.WithField("error", err.Error()).Error("Failed to open capture")
		return nil, fmt.Errorf("%w: %w", monitor.ErrCaptureUnavailable, err)
	}

	m, err := NewMonitor(s.settings.Session, capture, s.classifier, WithClock(s.clock), WithLogger(entry))
	if err != nil {
		capture.Close()
		return nil, err
	}

	atomic.AddInt64(&s.active, 1)
	entry.Info("Stream opened")

	return &Stream{
		ID:        streamID,
		DeviceID:  s.settings.CameraDeviceID,
		StartedAt: time.Now(),
		monitor:   m,
		capture:   capture,
		encoder:   s.utils,
		log:       entry,
		onVerdict: s.dispatcher.Dispatch,
		onClose: func() {
			atomic.AddInt64(&s.active, -1)
		},
	}, nil
}

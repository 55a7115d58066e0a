package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/camera"
	"DrowsyWatch/pkg/utils"
	"fmt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"sync"
	"sync/atomic"
	"time"
)

// EncodedUnit is a monitor unit together with its JPEG bytes.
type EncodedUnit struct {
	Unit
	Data []byte
}

// Stream is one viewer session. It owns its capture and monitor; nothing is
// shared with other streams except the verdict sinks.
type Stream struct {
	ID        string
	DeviceID  string
	StartedAt time.Time

	monitor   *Monitor
	capture   camera.Capture
	encoder   utils.IUtils
	log       *logrus.Entry
	onVerdict func(entity.Verdict, []byte)
	onClose   func()

	frames    uint64
	verdicts  uint64
	closeOnce sync.Once
	closeErr  error
}

// Next produces the next encoded unit. Errors end the stream.
func (s *Stream) Next(ctx context.Context) (EncodedUnit, error) {
	unit, err := s.monitor.Next(ctx)
	if err != nil {
		return EncodedUnit{}, err
	}

	data, err := s.encoder.EncodeJPEG(unit.Frame.Image)
	if err != nil {
		return EncodedUnit{}, fmt.Errorf("%w: %w", monitor.ErrEncodingFailure, err)
	}

	switch unit.Kind {
	case UnitFrame:
		atomic.AddUint64(&s.frames, 1)
	case UnitVerdict:
		atomic.AddUint64(&s.verdicts, 1)
		if s.onVerdict != nil {
			s.onVerdict(s.verdictFrom(unit), data)
		}
	}

	return EncodedUnit{Unit: unit, Data: data}, nil
}

func (s *Stream) Phase() entity.Phase {
	return s.monitor.Phase()
}

func (s *Stream) Counts() (frames, verdicts uint64) {
	return atomic.LoadUint64(&s.frames), atomic.LoadUint64(&s.verdicts)
}

// Close releases the capture. Calling it more than once is safe.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.capture.Close()
		if s.onClose != nil {
			s.onClose()
		}

		frames, verdicts := s.Counts()
		s.log.WithFields(logrus.Fields{
			"frames":   frames,
			"verdicts": verdicts,
			"duration": time.Since(s.StartedAt).String(),
		}).Info("Stream closed, capture released")
	})
	return s.closeErr
}

func (s *Stream) verdictFrom(unit Unit) entity.Verdict {
	id, err := s.encoder.NewULIDFromTimestamp(unit.At)
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("Failed to generate verdict ULID, using UUID")
		id = uuid.NewString()
	}

	return entity.Verdict{
		ID:          id,
		StreamID:    s.ID,
		DeviceID:    s.DeviceID,
		Status:      unit.Status.String(),
		Sum:         unit.Sum,
		Present:     unit.Present,
		Absent:      unit.Absent,
		WindowStart: unit.WindowStart,
		DecidedAt:   unit.At,
	}
}

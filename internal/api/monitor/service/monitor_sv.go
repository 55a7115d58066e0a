package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/camera"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"io"
	"time"
)

var sessionValidator = validator.New()

// Classifier reports whether a frame shows a face.
type Classifier interface {
	IsFacePresent(ctx context.Context, frame entity.Frame) (bool, error)
}

type UnitKind uint8

const (
	UnitFrame UnitKind = iota
	UnitVerdict
)

func (k UnitKind) String() string {
	if k == UnitVerdict {
		return "verdict"
	}
	return "frame"
}

// Unit is one output of the monitor. Frame.Image carries the annotation.
// Sum, Present and Absent are only set on verdict units.
type Unit struct {
	Kind        UnitKind
	Status      entity.Status
	Frame       entity.Frame
	Sum         int
	Present     int
	Absent      int
	WindowStart time.Time
	At          time.Time
}

// Monitor turns per-frame classifications into debounced verdicts. It owns
// no goroutine: every call to Next advances the state machine until it has
// one unit to hand out.
type Monitor struct {
	cfg        entity.SessionConfig
	capture    camera.Capture
	classifier Classifier
	clock      Clock
	log        *logrus.Entry

	phase              entity.Phase
	workingPeriodStart time.Time
	alarmWindowStart   time.Time
	restartWindow      bool
	ledger             voteLedger
	lastFrame          entity.Frame
}

type MonitorOption func(*Monitor)

func WithClock(clock Clock) MonitorOption {
	return func(m *Monitor) {
		m.clock = clock
	}
}

func WithLogger(entry *logrus.Entry) MonitorOption {
	return func(m *Monitor) {
		m.log = entry
	}
}

func ValidateSession(cfg entity.SessionConfig) error {
	if err := sessionValidator.Struct(cfg); err != nil {
		return fmt.Errorf("%w: working=%s alarm=%s rest=%s: %v",
			monitor.ErrInvalidConfiguration, cfg.WorkingDuration, cfg.AlarmDuration, cfg.RestDuration, err)
	}
	return nil
}

func NewMonitor(cfg entity.SessionConfig, capture camera.Capture, classifier Classifier, opts ...MonitorOption) (*Monitor, error) {
	if err := ValidateSession(cfg); err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:        cfg,
		capture:    capture,
		classifier: classifier,
		clock:      RealClock(),
		phase:      entity.PhaseWorking,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		m.log = logrus.NewEntry(discard)
	}

	now := m.clock.Now()
	m.workingPeriodStart = now
	m.alarmWindowStart = now

	return m, nil
}

func (m *Monitor) Phase() entity.Phase {
	return m.phase
}

// Next returns the next unit. A Resting phase is waited out inside the call.
// Any error ends the session; the monitor must not be used afterwards.
func (m *Monitor) Next(ctx context.Context) (Unit, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Unit{}, err
		}

		now := m.clock.Now()
		if m.restartWindow {
			m.alarmWindowStart = now
			m.restartWindow = false
		}

		if now.Sub(m.workingPeriodStart) < m.cfg.WorkingDuration {
			if now.Sub(m.alarmWindowStart) < m.cfg.AlarmDuration {
				return m.sample(ctx)
			}
			return m.conclude(now)
		}

		// The sub-window closing together with the working period still
		// gets its verdict before the rest.
		if m.ledger.Len() > 0 {
			return m.conclude(now)
		}

		if err := m.rest(ctx); err != nil {
			return Unit{}, err
		}
	}
}

func (m *Monitor) sample(ctx context.Context) (Unit, error) {
	frame, err := m.capture.ReadFrame(ctx)
	if err != nil {
		return Unit{}, captureError(err)
	}
	if frame.IsZero() {
		return Unit{}, fmt.Errorf("%w: capture returned an empty frame", monitor.ErrCaptureRead)
	}

	present, err := m.classifier.IsFacePresent(ctx, frame)
	if err != nil {
		return Unit{}, fmt.Errorf("%w: %w", monitor.ErrClassification, err)
	}

	m.ledger.Add(present)
	m.lastFrame = frame
	status := entity.StatusFromPresence(present)

	m.log.WithFields(logrus.Fields{
		"seq":    frame.Seq,
		"status": status.String(),
		"sum":    m.ledger.sum,
	}).Debug("Frame classified")

	return Unit{
		Kind:   UnitFrame,
		Status: status,
		Frame: entity.Frame{
			Seq:       frame.Seq,
			Timestamp: frame.Timestamp,
			Image:     annotate(frame.Image, status, frameLabelScale),
		},
		WindowStart: m.alarmWindowStart,
		At:          m.clock.Now(),
	}, nil
}

// conclude commits the verdict of the current sub-window on its last frame.
// No frame is read here.
func (m *Monitor) conclude(now time.Time) (Unit, error) {
	if m.ledger.Len() == 0 || m.lastFrame.IsZero() {
		return Unit{}, fmt.Errorf("%w: window opened at %s", monitor.ErrEmptyAlarmWindow, m.alarmWindowStart.Format(time.RFC3339Nano))
	}

	status := m.ledger.Verdict()
	last := m.lastFrame

	unit := Unit{
		Kind:   UnitVerdict,
		Status: status,
		Frame: entity.Frame{
			Seq:       last.Seq,
			Timestamp: last.Timestamp,
			Image:     annotate(last.Image, status, verdictLabelScale),
		},
		Sum:         m.ledger.sum,
		Present:     m.ledger.present,
		Absent:      m.ledger.absent,
		WindowStart: m.alarmWindowStart,
		At:          now,
	}

	m.log.WithFields(logrus.Fields{
		"status":  status.String(),
		"sum":     unit.Sum,
		"present": unit.Present,
		"absent":  unit.Absent,
	}).Info("Alarm window verdict")

	m.ledger.Reset()
	m.lastFrame = entity.Frame{}
	m.restartWindow = true

	return unit, nil
}

func (m *Monitor) rest(ctx context.Context) error {
	m.phase = entity.PhaseResting
	m.ledger.Reset()
	m.lastFrame = entity.Frame{}

	m.log.WithField("rest", m.cfg.RestDuration.String()).Info("Working period elapsed, resting")

	if err := m.clock.Sleep(ctx, m.cfg.RestDuration); err != nil {
		return err
	}

	now := m.clock.Now()
	m.workingPeriodStart = now
	m.alarmWindowStart = now
	m.restartWindow = false
	m.phase = entity.PhaseWorking

	m.log.Info("Rest finished, working period started")
	return nil
}

func captureError(err error) error {
	switch {
	case errors.Is(err, camera.ErrEndOfStream):
		return fmt.Errorf("%w: %w", monitor.ErrEndOfStream, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", monitor.ErrCaptureRead, err)
	}
}

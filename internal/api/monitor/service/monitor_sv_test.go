package monitorService

import (
	"DrowsyWatch/internal/api/monitor"
	"DrowsyWatch/internal/entity"
	"errors"
	"golang.org/x/net/context"
	"testing"
	"time"
)

func session(working, alarm, rest time.Duration) entity.SessionConfig {
	return entity.SessionConfig{
		WorkingDuration: working,
		AlarmDuration:   alarm,
		RestDuration:    rest,
	}
}

func newTestMonitor(t *testing.T, cfg entity.SessionConfig, present func(uint64) bool) (*Monitor, *fakeCapture, *manualClock) {
	t.Helper()
	clock := newManualClock()
	capture := newFakeCapture(clock, time.Second)
	m, err := NewMonitor(cfg, capture, &scriptedClassifier{present: present}, WithClock(clock))
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}
	return m, capture, clock
}

func collect(t *testing.T, m *Monitor, n int) []Unit {
	t.Helper()
	units := make([]Unit, 0, n)
	for i := 0; i < n; i++ {
		u, err := m.Next(context.Background())
		if err != nil {
			t.Fatalf("Next #%d failed: %v", i, err)
		}
		units = append(units, u)
	}
	return units
}

func kinds(units []Unit) string {
	out := make([]byte, len(units))
	for i, u := range units {
		if u.Kind == UnitVerdict {
			out[i] = 'V'
		} else {
			out[i] = 'F'
		}
	}
	return string(out)
}

func TestMonitorWorkingPeriodCycle(t *testing.T) {
	m, _, clock := newTestMonitor(t, session(15*time.Second, 5*time.Second, 2*time.Second), alwaysPresent)

	units := collect(t, m, 19)

	if got, want := kinds(units), "FFFFFVFFFFFVFFFFFVF"; got != want {
		t.Fatalf("unit sequence = %s, want %s", got, want)
	}

	wantSeq := []uint64{4, 9, 14}
	verdicts := 0
	for _, u := range units {
		if u.Kind != UnitVerdict {
			continue
		}
		if u.Status != entity.StatusAwake {
			t.Errorf("verdict %d status = %s, want Awake", verdicts, u.Status)
		}
		if u.Present != 5 || u.Absent != 0 || u.Sum != 5 {
			t.Errorf("verdict %d tally = %d/%d/%d, want 5/0/5", verdicts, u.Present, u.Absent, u.Sum)
		}
		if u.Frame.Seq != wantSeq[verdicts] {
			t.Errorf("verdict %d drawn on frame %d, want %d", verdicts, u.Frame.Seq, wantSeq[verdicts])
		}
		verdicts++
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Errorf("rests = %v, want [2s]", sleeps)
	}
	if m.Phase() != entity.PhaseWorking {
		t.Errorf("phase = %s, want Working", m.Phase())
	}

	last := units[len(units)-1]
	if want := epoch.Add(17 * time.Second); !last.Frame.Timestamp.Equal(want) {
		t.Errorf("first frame after rest captured at %s, want %s", last.Frame.Timestamp, want)
	}
}

func TestMonitorFirstVerdictOfDefaultSession(t *testing.T) {
	tests := []struct {
		name    string
		present func(uint64) bool
		status  entity.Status
	}{
		{"always absent", alwaysAbsent, entity.StatusSleep},
		{"always present", alwaysPresent, entity.StatusAwake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMonitor(t, session(15*time.Second, 5*time.Second, 2*time.Second), tt.present)

			units := collect(t, m, 6)
			if got := kinds(units); got != "FFFFFV" {
				t.Fatalf("unit sequence = %s, want FFFFFV", got)
			}
			if units[5].Status != tt.status {
				t.Errorf("first verdict = %s, want %s", units[5].Status, tt.status)
			}
		})
	}
}

func TestMonitorRestingTouchesNeitherCaptureNorClassifier(t *testing.T) {
	base := newManualClock()
	capture := newFakeCapture(base, time.Second)
	classifier := &scriptedClassifier{present: alwaysPresent}

	var m *Monitor
	var readsAtRest uint64
	var callsAtRest, rests int
	clock := &sleepHookClock{manualClock: base}
	clock.onSleep = func(time.Duration) {
		rests++
		readsAtRest = capture.Reads()
		callsAtRest = classifier.calls
		if m.Phase() != entity.PhaseResting {
			t.Errorf("phase during rest = %s, want Resting", m.Phase())
		}
	}

	m, err := NewMonitor(session(15*time.Second, 5*time.Second, 2*time.Second), capture, classifier, WithClock(clock))
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}

	units := collect(t, m, 18)
	if got := kinds(units); got != "FFFFFVFFFFFVFFFFFV" {
		t.Fatalf("unit sequence = %s", got)
	}
	readsBefore, callsBefore := capture.Reads(), classifier.calls

	u, err := m.Next(context.Background())
	if err != nil {
		t.Fatalf("Next after working period failed: %v", err)
	}
	if u.Kind != UnitFrame {
		t.Fatalf("unit after rest = %s, want frame", u.Kind)
	}

	if rests != 1 {
		t.Fatalf("rests = %d, want 1", rests)
	}
	if readsAtRest != readsBefore || callsAtRest != callsBefore {
		t.Errorf("at rest reads/calls = %d/%d, want %d/%d", readsAtRest, callsAtRest, readsBefore, callsBefore)
	}
	if capture.Reads() != readsBefore+1 || classifier.calls != callsBefore+1 {
		t.Errorf("after rest reads/calls = %d/%d, want one more of each", capture.Reads(), classifier.calls)
	}
}

func TestMonitorAlarmEqualToWorkingGivesOneVerdictPerPeriod(t *testing.T) {
	m, _, clock := newTestMonitor(t, session(5*time.Second, 5*time.Second, 0), alwaysPresent)

	units := collect(t, m, 12)

	if got, want := kinds(units), "FFFFFVFFFFFV"; got != want {
		t.Fatalf("unit sequence = %s, want %s", got, want)
	}
	if len(clock.Sleeps()) != 1 {
		t.Errorf("expected one rest between the two periods, got %v", clock.Sleeps())
	}
}

func TestMonitorVerdictVotes(t *testing.T) {
	tests := []struct {
		name    string
		present func(uint64) bool
		status  entity.Status
		sum     int
	}{
		{"all present", alwaysPresent, entity.StatusAwake, 4},
		{"tie resolves to awake", func(seq uint64) bool { return seq%2 == 0 }, entity.StatusAwake, 0},
		{"majority absent", func(seq uint64) bool { return seq%4 == 0 }, entity.StatusSleep, -2},
		{"all absent", func(uint64) bool { return false }, entity.StatusSleep, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMonitor(t, session(time.Minute, 4*time.Second, 0), tt.present)

			units := collect(t, m, 5)
			verdict := units[4]
			if verdict.Kind != UnitVerdict {
				t.Fatalf("unit 4 kind = %s, want verdict", verdict.Kind)
			}
			if verdict.Status != tt.status {
				t.Errorf("status = %s, want %s", verdict.Status, tt.status)
			}
			if verdict.Sum != tt.sum {
				t.Errorf("sum = %d, want %d", verdict.Sum, tt.sum)
			}
			if verdict.Present+verdict.Absent != 4 {
				t.Errorf("votes = %d, want 4", verdict.Present+verdict.Absent)
			}
			if !hasColor(verdict.Frame.Image, tt.status.Color()) {
				t.Errorf("verdict frame carries no %s label", tt.status)
			}
		})
	}
}

func TestMonitorFrameLabelsFollowClassification(t *testing.T) {
	m, _, _ := newTestMonitor(t, session(time.Minute, 10*time.Second, 0), func(seq uint64) bool { return seq == 0 })

	units := collect(t, m, 2)

	if units[0].Status != entity.StatusAwake || !hasColor(units[0].Frame.Image, entity.StatusAwake.Color()) {
		t.Error("frame with a face should be labelled Awake in green")
	}
	if units[1].Status != entity.StatusSleep || !hasColor(units[1].Frame.Image, entity.StatusSleep.Color()) {
		t.Error("frame without a face should be labelled Sleep in red")
	}
}

func TestMonitorSlowConsumerStartsFreshWindow(t *testing.T) {
	m, capture, clock := newTestMonitor(t, session(time.Minute, 5*time.Second, 0), alwaysPresent)

	units := collect(t, m, 6)
	if units[5].Kind != UnitVerdict {
		t.Fatalf("unit 5 kind = %s, want verdict", units[5].Kind)
	}

	// The viewer takes 7s to come back; the next window opens on that pull.
	clock.Advance(7 * time.Second)

	u, err := m.Next(context.Background())
	if err != nil {
		t.Fatalf("Next after a slow pull failed: %v", err)
	}
	if u.Kind != UnitFrame {
		t.Fatalf("kind = %s, want frame", u.Kind)
	}
	if want := epoch.Add(12 * time.Second); !u.WindowStart.Equal(want) {
		t.Errorf("window start = %s, want %s", u.WindowStart, want)
	}
	if capture.Reads() != 6 {
		t.Errorf("reads = %d, want 6", capture.Reads())
	}
}

func TestMonitorRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  entity.SessionConfig
	}{
		{"alarm longer than working", session(5*time.Second, 6*time.Second, time.Second)},
		{"zero working", session(0, 0, time.Second)},
		{"zero alarm", session(5*time.Second, 0, time.Second)},
		{"negative rest", session(5*time.Second, time.Second, -time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newManualClock()
			capture := newFakeCapture(clock, time.Second)

			_, err := NewMonitor(tt.cfg, capture, &scriptedClassifier{present: alwaysPresent}, WithClock(clock))
			if !errors.Is(err, monitor.ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
			if capture.Reads() != 0 {
				t.Errorf("capture was read %d times before validation", capture.Reads())
			}
		})
	}
}

func TestMonitorEndOfStream(t *testing.T) {
	m, capture, _ := newTestMonitor(t, session(time.Minute, 5*time.Second, 0), alwaysPresent)
	capture.limit = 3

	collect(t, m, 3)

	_, err := m.Next(context.Background())
	if !errors.Is(err, monitor.ErrEndOfStream) {
		t.Fatalf("err = %v, want ErrEndOfStream", err)
	}
}

func TestMonitorCaptureReadFailure(t *testing.T) {
	m, capture, _ := newTestMonitor(t, session(time.Minute, 5*time.Second, 0), alwaysPresent)
	capture.readErr = errors.New("device unplugged")

	_, err := m.Next(context.Background())
	if !errors.Is(err, monitor.ErrCaptureRead) {
		t.Fatalf("err = %v, want ErrCaptureRead", err)
	}
}

func TestMonitorClassifierFailure(t *testing.T) {
	clock := newManualClock()
	capture := newFakeCapture(clock, time.Second)
	classifier := &scriptedClassifier{err: errors.New("model offline")}

	m, err := NewMonitor(session(time.Minute, 5*time.Second, 0), capture, classifier, WithClock(clock))
	if err != nil {
		t.Fatalf("NewMonitor failed: %v", err)
	}

	if _, err := m.Next(context.Background()); !errors.Is(err, monitor.ErrClassification) {
		t.Fatalf("err = %v, want ErrClassification", err)
	}
}

func TestMonitorStopsOnCancelledContext(t *testing.T) {
	m, capture, _ := newTestMonitor(t, session(time.Minute, 5*time.Second, 0), alwaysPresent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if capture.Reads() != 0 {
		t.Errorf("reads = %d after cancellation, want 0", capture.Reads())
	}
}

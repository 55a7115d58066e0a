package monitorService

import "DrowsyWatch/internal/entity"

// voteLedger is the running tally of one alarm sub-window: +1 per frame with
// a face, -1 per frame without.
type voteLedger struct {
	sum     int
	present int
	absent  int
}

func (l *voteLedger) Add(facePresent bool) {
	if facePresent {
		l.sum++
		l.present++
		return
	}
	l.sum--
	l.absent++
}

func (l *voteLedger) Len() int {
	return l.present + l.absent
}

// Verdict resolves ties to Awake.
func (l *voteLedger) Verdict() entity.Status {
	if l.sum < 0 {
		return entity.StatusSleep
	}
	return entity.StatusAwake
}

func (l *voteLedger) Reset() {
	*l = voteLedger{}
}

package entity

import (
	"image/color"
	"time"
)

type Status uint8

const (
	StatusAwake Status = 0
	StatusSleep Status = 1
)

var StatusMap = map[Status]string{
	StatusAwake: "Awake",
	StatusSleep: "Sleep",
}

var StatusColorMap = map[Status]color.RGBA{
	StatusAwake: {R: 0, G: 255, B: 0, A: 255},
	StatusSleep: {R: 255, G: 0, B: 0, A: 255},
}

func (s Status) String() string {
	return StatusMap[s]
}

func (s Status) Color() color.RGBA {
	return StatusColorMap[s]
}

func (s Status) Value() uint8 {
	return uint8(s)
}

// StatusFromPresence maps a single classification onto a status.
func StatusFromPresence(facePresent bool) Status {
	if facePresent {
		return StatusAwake
	}
	return StatusSleep
}

type Phase uint8

const (
	PhaseWorking Phase = 0
	PhaseResting Phase = 1
)

var PhaseMap = map[Phase]string{
	PhaseWorking: "Working",
	PhaseResting: "Resting",
}

func (p Phase) String() string {
	return PhaseMap[p]
}

// Verdict is the debounced outcome of one alarm sub-window.
type Verdict struct {
	ID          string    `json:"id" db:"id"`
	StreamID    string    `json:"stream_id" db:"stream_id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Status      string    `json:"status" db:"status"`
	Sum         int       `json:"sum" db:"vote_sum"`
	Present     int       `json:"present" db:"present_count"`
	Absent      int       `json:"absent" db:"absent_count"`
	SnapshotURL string    `json:"snapshot_url,omitempty" db:"snapshot_url"`
	WindowStart time.Time `json:"window_start" db:"window_start"`
	DecidedAt   time.Time `json:"decided_at" db:"decided_at"`
}

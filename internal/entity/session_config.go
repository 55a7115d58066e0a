package entity

import "time"

// SessionConfig holds the timing of one monitoring session.
type SessionConfig struct {
	WorkingDuration time.Duration `validate:"gt=0"`
	AlarmDuration   time.Duration `validate:"gt=0,ltefield=WorkingDuration"`
	RestDuration    time.Duration `validate:"gte=0"`
}

package models

import "time"

// Clock abstracts time so cache expiry and scheduling can be tested.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time (always UTC).
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }

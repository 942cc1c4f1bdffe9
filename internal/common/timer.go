// Package common provides small shared utilities.
package common

import (
	"fmt"
	"time"
)

// Timer measures elapsed wall time for one pipeline stage or run.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer carrying a stage name for log output.
func NewNamedTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop records and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Seconds returns the recorded duration in seconds, rounded to
// milliseconds, for report fields.
func (t *Timer) Seconds() float64 {
	return float64(t.duration.Round(time.Millisecond)) / float64(time.Second)
}

// Name returns the timer name, empty if unnamed.
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

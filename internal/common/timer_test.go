package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewNamedTimer("scan")
	assert.Equal(t, "scan", timer.Name())

	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())

	str := timer.String()
	assert.Contains(t, str, "scan")
}

func TestTimerSeconds(t *testing.T) {
	timer := NewTimer()
	timer.duration = 1234 * time.Millisecond
	assert.InDelta(t, 1.234, timer.Seconds(), 1e-9)

	timer.duration = 1234567 * time.Microsecond
	assert.InDelta(t, 1.235, timer.Seconds(), 1e-9)
}

func TestUnnamedTimerString(t *testing.T) {
	timer := NewTimer()
	timer.Stop()
	assert.Empty(t, timer.Name())
	assert.NotEmpty(t, timer.String())
}

package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerInitialState(t *testing.T) {
	b := New("relay")
	assert.True(t, b.Allow())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "relay", b.Name())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("relay", WithFailureThreshold(3))

	assert.False(t, b.RecordFailure())
	assert.False(t, b.RecordFailure())
	assert.True(t, b.RecordFailure(), "the third failure opens the circuit")
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	assert.False(t, b.RecordFailure(), "further failures keep it open without a new transition")
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := New("relay", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.RecordFailure())
}

func TestBreakerCooldownReclosesOnProbe(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	b := New("relay",
		WithFailureThreshold(1),
		WithCooldown(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(30 * time.Second)
	assert.False(t, b.Allow(), "still cooling down")

	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow(), "expired cooldown lets the next call probe")
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerFailureDuringOpenExtendsCooldown(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	b := New("relay",
		WithFailureThreshold(1),
		WithCooldown(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	now = now.Add(45 * time.Second)
	b.RecordFailure()

	now = now.Add(30 * time.Second)
	assert.False(t, b.Allow(), "the second failure pushed the cooldown out")
}

func TestBreakerReset(t *testing.T) {
	b := New("relay", WithFailureThreshold(1))
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_AdvancesOneStepPerCall(t *testing.T) {
	clock := NewDefaultClock()
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch.Add(time.Second), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Second), clock.Now())
}

func TestClock_PeekDoesNotAdvance(t *testing.T) {
	clock := NewClock(time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC))

	next := clock.Peek()
	assert.Equal(t, next, clock.Peek())
	assert.Equal(t, next, clock.Now())
	assert.Equal(t, next.Add(time.Second), clock.Peek())
}

func TestClock_TwoClocksAreIndependent(t *testing.T) {
	a := NewDefaultClock()
	b := NewDefaultClock()

	a.Now()
	a.Now()
	assert.Equal(t, b.Peek().Add(2*time.Second), a.Peek())
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingDelay_PadsFailures(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 50})

	start := time.Now()
	td.WaitFrom(start, false)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_NoDelayOnSuccess(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 200})

	start := time.Now()
	td.WaitFrom(start, true)

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTimingDelay_NoSleepWhenAlreadyElapsed(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 10})

	start := time.Now().Add(-100 * time.Millisecond)
	before := time.Now()
	td.WaitFrom(start, false)

	assert.Less(t, time.Since(before), 50*time.Millisecond)
}

func TestCryptoRandIntn_Bounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v, err := cryptoRandIntn(10)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}

	v, err := cryptoRandIntn(0)
	assert.NoError(t, err)
	assert.Zero(t, v)
}

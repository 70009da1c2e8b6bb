package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for response-timing smoothing
type TimingConfig struct {
	BaseDelayMs   int // Minimum elapsed time for failed attempts, in milliseconds
	RandomDelayMs int // Random jitter range in milliseconds
}

// TimingDelay pads failed attempts to a uniform minimum duration so the
// response time does not reveal whether a login exists or how far the
// attempt got before being rejected.
type TimingDelay struct {
	config TimingConfig
}

// NewTimingDelay creates a new TimingDelay instance
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// cryptoRandIntn returns a secure random number in [0, max)
func cryptoRandIntn(max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0, err
	}

	randomValue := binary.BigEndian.Uint64(randomBytes)
	return int(randomValue % uint64(max)), nil
}

// WaitFrom sleeps until at least base+jitter has elapsed since startTime.
// Successful attempts return immediately.
func (td *TimingDelay) WaitFrom(startTime time.Time, succeeded bool) {
	if succeeded {
		return
	}

	targetDelay := time.Duration(td.config.BaseDelayMs) * time.Millisecond
	if td.config.RandomDelayMs > 0 {
		if randomValue, err := cryptoRandIntn(td.config.RandomDelayMs); err == nil {
			targetDelay += time.Duration(randomValue) * time.Millisecond
		}
	}

	elapsed := time.Since(startTime)
	if elapsed < targetDelay {
		time.Sleep(targetDelay - elapsed)
	}
}

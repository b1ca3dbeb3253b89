package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// TimingConfig configures failure delay equalization.
type TimingConfig struct {
	BaseDelay   time.Duration
	RandomDelay time.Duration // upper bound of uniform jitter added to BaseDelay
}

// TimingDelay pads failed credential checks to a jittered minimum duration so
// that unknown usernames and wrong passwords cannot be told apart by latency.
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config}
}

// target returns BaseDelay plus crypto-random jitter.
func (td *TimingDelay) target() time.Duration {
	d := td.config.BaseDelay
	if td.config.RandomDelay > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(td.config.RandomDelay))); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// WaitFrom blocks until at least the target delay has elapsed since start, or
// ctx is done.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time) {
	remaining := td.target() - time.Since(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

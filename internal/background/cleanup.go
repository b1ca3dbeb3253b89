package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionSweeper drops login sessions idle past their TTL.
type SessionSweeper interface {
	SweepExpired(now time.Time) int
}

// CleanupManager periodically sweeps expired login sessions.
type CleanupManager struct {
	sweeper  SessionSweeper
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCleanupManager(sweeper SessionSweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sweeper:  sweeper,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep every interval until Stop is called or ctx is done.
// It blocks.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup() {
	removed := cm.sweeper.SweepExpired(cm.now())
	if removed > 0 {
		cm.logger.Info("expired login sessions removed", slog.Int("sessions_removed", removed))
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

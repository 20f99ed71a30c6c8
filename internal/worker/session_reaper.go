package worker

import (
	"time"

	"narrative-forge/internal/service"

	"go.uber.org/zap"
)

const reapInterval = 5 * time.Minute

// SessionReaper periodically evicts ended, stale sessions once they exceed
// the configured TTL. With a zero TTL (the default) it does nothing and
// sessions are retained forever, matching the historical behavior.
type SessionReaper struct {
	svc          *service.StoryService
	ttl          time.Duration
	logger       *zap.Logger
	shutdownChan chan struct{}
}

// NewSessionReaper creates a reaper for the given service and TTL.
func NewSessionReaper(svc *service.StoryService, ttl time.Duration, logger *zap.Logger) *SessionReaper {
	return &SessionReaper{
		svc:          svc,
		ttl:          ttl,
		logger:       logger.Named("SessionReaper"),
		shutdownChan: make(chan struct{}),
	}
}

// Start launches the reap loop in its own goroutine. No-op when the TTL is
// zero.
func (r *SessionReaper) Start() {
	if r.ttl <= 0 {
		r.logger.Info("Session TTL not configured, reaper disabled")
		return
	}
	r.logger.Info("Starting session reaper", zap.Duration("ttl", r.ttl), zap.Duration("interval", reapInterval))

	go func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.shutdownChan:
				r.logger.Info("Session reaper stopped")
				return
			case <-ticker.C:
				r.svc.EvictStale(r.ttl)
			}
		}
	}()
}

// Stop terminates the reap loop.
func (r *SessionReaper) Stop() {
	close(r.shutdownChan)
}

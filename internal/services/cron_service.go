package services

import (
	"time"

	"go.uber.org/zap"
)

// IdleEvicter is satisfied by cart.Registry.
type IdleEvicter interface {
	EvictIdle(maxIdle time.Duration) int
	Len() int
}

// SessionJanitor periodically drops in-memory carts that have been idle for
// longer than maxIdle. Their persisted state is untouched.
type SessionJanitor struct {
	ticker   *time.Ticker
	stopChan chan struct{}
	registry IdleEvicter
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger
}

func NewSessionJanitor(registry IdleEvicter, interval, maxIdle time.Duration, logger *zap.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionJanitor{
		stopChan: make(chan struct{}),
		registry: registry,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

func (s *SessionJanitor) Start() {
	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.Sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.logger.Info("session janitor started",
		zap.Duration("interval", s.interval), zap.Duration("max_idle", s.maxIdle))
}

func (s *SessionJanitor) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
	s.logger.Info("session janitor stopped")
}

// Sweep runs one eviction pass and returns the number of carts dropped.
func (s *SessionJanitor) Sweep() int {
	evicted := s.registry.EvictIdle(s.maxIdle)
	if evicted > 0 {
		s.logger.Debug("evicted idle carts", zap.Int("evicted", evicted), zap.Int("remaining", s.registry.Len()))
	}
	return evicted
}

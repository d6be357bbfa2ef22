package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/breachwatch/monitor/configs"
	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
)

// UnverifiedPurger is the part of the subscriber service the purge job drives.
type UnverifiedPurger interface {
	DeleteUnverifiedSubscribers(ctx context.Context, olderThan time.Duration) (*subscriber.PurgeResult, error)
}

// PurgeScheduler periodically removes subscribers and secondary addresses that
// never completed verification.
type PurgeScheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    configs.PurgeConfig
	purger    UnverifiedPurger
	logger    *logrus.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	mu        sync.RWMutex
	runMu     sync.Mutex
}

func NewPurgeScheduler(cfg configs.PurgeConfig, purger UnverifiedPurger, logger *logrus.Logger) *PurgeScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PurgeScheduler{
		cron:   cron.New(),
		config: cfg,
		purger: purger,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the purge on the configured schedule.
func (s *PurgeScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("purge scheduler is already running")
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunOnce(s.ctx); err != nil {
			s.logger.WithError(err).Error("purge: run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add purge job %q: %w", s.config.Schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"schedule": s.config.Schedule,
		"max_age":  s.config.MaxAge.String(),
	}).Info("purge scheduler started")
	return nil
}

// Stop waits for an in-flight purge to finish or for ctx to expire.
func (s *PurgeScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.cron.Stop()
	s.isRunning = false

	select {
	case <-done.Done():
		s.cancel()
		s.logger.Info("purge scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("purge scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *PurgeScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun is zero when the scheduler is stopped.
func (s *PurgeScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunOnce performs a single purge. Overlapping runs are serialized.
func (s *PurgeScheduler) RunOnce(ctx context.Context) (*subscriber.PurgeResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	res, err := s.purger.DeleteUnverifiedSubscribers(ctx, s.config.MaxAge)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"subscribers":     len(res.Subscribers),
		"email_addresses": res.EmailAddresses,
		"duration":        time.Since(start).String(),
	}).Info("purge: removed unverified records")
	return res, nil
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes request log rows older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler periodically prunes the request log past its retention window.
type Scheduler struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(store Pruner, retention, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		store:     store,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop stops the scheduler and waits for an in-flight prune to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	zap.L().Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.PruneOnce(s.ctx)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.PruneOnce(s.ctx)
		}
	}
}

// PruneOnce deletes every request older than the retention window.
func (s *Scheduler) PruneOnce(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		zap.L().Error("failed to prune request log", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("pruned request log", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
}

// Package cron runs periodic maintenance for the order platform. The work is
// small enough for a fixed-interval loop guarded by a shared lock, so an
// external scheduler is not needed.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/amicofritto/orders-backend/pkg/logger"
)

const defaultInterval = time.Hour

// Job is one maintenance task executed on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Service executes the registered jobs on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	lock     Lock
	interval time.Duration
	jobs     []Job
}

// NewService wires the maintenance loop.
func NewService(logg *logger.Logger, lock Lock, interval time.Duration, jobs ...Job) (*Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	kept := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job != nil {
			kept = append(kept, job)
		}
	}
	return &Service{logg: logg, lock: lock, interval: interval, jobs: kept}, nil
}

// Run executes a cycle immediately, then once per interval until the context
// is canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithComponent(ctx, "maintenance")
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "maintenance cycle failed", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "maintenance loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "maintenance cycle failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire maintenance lock: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "maintenance already running elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "release maintenance lock", relErr)
		}
	}()

	for _, job := range s.jobs {
		s.runJob(ctx, job)
	}
	return nil
}

// runJob isolates one job so a failure never stops the rest of the cycle.
func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	err := job.Run(jobCtx)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "maintenance job failed", err)
		return
	}
	s.logg.Info(jobCtx, "maintenance job completed")
}

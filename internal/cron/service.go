package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/metrics"
)

const defaultInterval = time.Minute

// Job is one piece of work run on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger *logger.Logger
	// Jobs run in order. Nil entries are skipped; names must be unique.
	Jobs     []Job
	Lock     Lock
	Metrics  *metrics.CronMetrics
	Interval time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service ticks the registered jobs. Only the replica holding the lease runs
// a cycle; the others skip it.
type Service struct {
	logg     *logger.Logger
	jobs     []Job
	lock     Lock
	metrics  *metrics.CronMetrics
	interval time.Duration
	now      func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger required")
	case p.Lock == nil:
		return nil, errors.New("lock required")
	}
	svc := &Service{
		logg:     p.Logger,
		lock:     p.Lock,
		metrics:  p.Metrics,
		interval: p.Interval,
		now:      p.Clock,
	}
	seen := make(map[string]bool, len(p.Jobs))
	for _, job := range p.Jobs {
		if job == nil {
			continue
		}
		if seen[job.Name()] {
			return nil, fmt.Errorf("duplicate cron job %q", job.Name())
		}
		seen[job.Name()] = true
		svc.jobs = append(svc.jobs, job)
	}
	if svc.interval <= 0 {
		svc.interval = defaultInterval
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Run fires a cycle right away and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron cycle finished with errors", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job once under the lease. Job failures do not stop the
// cycle; they come back combined.
func (s *Service) RunOnce(ctx context.Context) (err error) {
	held, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire cron lease: %w", err)
	}
	if !held {
		s.metrics.IncSkippedCycle()
		s.logg.Debug(ctx, "cron lease held elsewhere")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "cron lease release failed", relErr)
		}
	}()

	for _, job := range s.jobs {
		err = multierr.Append(err, s.runJob(ctx, job))
	}
	return err
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	started := s.now()
	err := job.Run(ctx)
	finished := s.now()
	took := finished.Sub(started)
	s.metrics.ObserveRun(job.Name(), took, finished, err)

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron job failed", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	s.logg.Info(ctx, "cron job done")
	return nil
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/metrics"
)

const (
	defaultInterval   = time.Hour
	defaultJobTimeout = 10 * time.Minute
)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Lock       Lock
	Metrics    *metrics.CronJobMetrics
	Interval   time.Duration
	JobTimeout time.Duration
}

// Service runs registered jobs on a fixed cadence, one instance at a time.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	lock       Lock
	metrics    *metrics.CronJobMetrics
	interval   time.Duration
	jobTimeout time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry, _ = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobTimeout := params.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		lock:       params.Lock,
		metrics:    params.Metrics,
		interval:   interval,
		jobTimeout: jobTimeout,
	}, nil
}

// Run executes a cycle immediately, then every interval until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	if err := s.RunOnce(ctx); err != nil {
		s.logg.Error(ctx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

// RunOnce runs every job under the lock. A failing job does not stop the
// others. When names is non-empty only those jobs run.
func (s *Service) RunOnce(ctx context.Context, names ...string) error {
	jobs := s.registry.Jobs()
	if len(names) > 0 {
		jobs = jobs[:0]
		for _, name := range names {
			job, ok := s.registry.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown cron job %q", name)
			}
			jobs = append(jobs, job)
		}
	}

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another cron instance holds the lock; skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	for _, job := range jobs {
		s.runJob(ctx, job)
	}
	return nil
}

// runJob never propagates a job failure or panic; both are logged and
// counted so the remaining jobs still run.
func (s *Service) runJob(ctx context.Context, job Job) {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	start := time.Now()
	err := safeRun(jobCtx, job)
	took := time.Since(start)
	s.metrics.Observe(job.Name(), took, err)

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron.job_failed", err)
		return
	}
	s.logg.Info(ctx, "cron.job_done")
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}

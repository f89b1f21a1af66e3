package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

const readinessTimeout = 10 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

// Dependency is a backing service the worker must reach before consuming.
type Dependency struct {
	Name string
	Conn pinger
}

// Service verifies its dependencies in parallel, then runs the mail consumer
// until the context ends.
type Service struct {
	logg     *logger.Logger
	deps     []Dependency
	consumer runner
}

func NewService(logg *logger.Logger, consumer runner, deps ...Dependency) (*Service, error) {
	switch {
	case logg == nil:
		return nil, errors.New("logger is required")
	case consumer == nil:
		return nil, errors.New("mail consumer is required")
	}
	for _, d := range deps {
		if d.Conn == nil {
			return nil, fmt.Errorf("%s client is required", d.Name)
		}
	}
	return &Service{logg: logg, deps: deps, consumer: consumer}, nil
}

func (s *Service) ready(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range s.deps {
		g.Go(func() error {
			pingCtx, cancel := context.WithTimeout(gctx, readinessTimeout)
			defer cancel()
			if err := d.Conn.Ping(pingCtx); err != nil {
				return fmt.Errorf("%s unreachable: %w", d.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		s.logg.Error(ctx, "worker.not_ready", err)
		return err
	}
	s.logg.Info(ctx, "worker.ready")

	err := s.consumer.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	s.logg.Error(ctx, "worker.consumer_stopped", err)
	return err
}

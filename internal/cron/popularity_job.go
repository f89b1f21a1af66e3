package cron

import (
	"context"
	"fmt"

	"github.com/aarav-aiphi/Backend/pkg/logger"
)

type popularityRecomputer interface {
	RecomputePopularity(ctx context.Context) (int64, error)
}

// NewPopularityJob rewrites popularity scores that drifted from the counters.
func NewPopularityJob(logg *logger.Logger, listings popularityRecomputer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &popularityJob{logg: logg, listings: listings}, nil
}

type popularityJob struct {
	logg     *logger.Logger
	listings popularityRecomputer
}

func (j *popularityJob) Name() string { return "popularity-recompute" }

func (j *popularityJob) Run(ctx context.Context) error {
	updated, err := j.listings.RecomputePopularity(ctx)
	if err != nil {
		return fmt.Errorf("recompute popularity: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "updated", updated), "popularity recompute complete")
	return nil
}

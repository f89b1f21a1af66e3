package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"go.uber.org/multierr"
)

const defaultTempRetention = 7 * 24 * time.Hour

type tempObjectStore interface {
	List(ctx context.Context, prefix string) ([]assets.Object, error)
	Destroy(ctx context.Context, publicID string) error
}

type pendingTempKeys interface {
	PendingTempKeys(ctx context.Context) ([]string, error)
}

type TempAssetSweepJobParams struct {
	Logger    *logger.Logger
	Assets    tempObjectStore
	Changes   pendingTempKeys
	Retention time.Duration
}

// NewTempAssetSweepJob removes staged uploads that outlived the retention
// window and that no pending change still references.
func NewTempAssetSweepJob(params TempAssetSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if params.Changes == nil {
		return nil, fmt.Errorf("pending change repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultTempRetention
	}
	return &tempAssetSweepJob{
		logg:      params.Logger,
		assets:    params.Assets,
		changes:   params.Changes,
		retention: retention,
		now:       time.Now,
	}, nil
}

type tempAssetSweepJob struct {
	logg      *logger.Logger
	assets    tempObjectStore
	changes   pendingTempKeys
	retention time.Duration
	now       func() time.Time
}

func (j *tempAssetSweepJob) Name() string { return "temp-asset-sweep" }

func (j *tempAssetSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	referenced, err := j.changes.PendingTempKeys(ctx)
	if err != nil {
		return fmt.Errorf("load referenced temp keys: %w", err)
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		keep[key] = struct{}{}
	}

	objects, err := j.assets.List(ctx, assets.FolderAgentsTemp+"/")
	if err != nil {
		return fmt.Errorf("list temp assets: %w", err)
	}

	var (
		deleted, retained int
		errs              error
	)
	for _, obj := range objects {
		if _, ok := keep[obj.Key]; ok || obj.LastModified.After(cutoff) {
			retained++
			continue
		}
		if err := j.assets.Destroy(ctx, obj.Key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("destroy %s: %w", obj.Key, err))
			continue
		}
		deleted++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"scanned":  len(objects),
		"deleted":  deleted,
		"retained": retained,
	})
	j.logg.Info(logCtx, "temp asset sweep complete")
	return errs
}

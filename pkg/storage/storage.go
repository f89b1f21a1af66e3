// Package storage selects the asset backend named in config.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/storage/gcs"
	"github.com/aarav-aiphi/Backend/pkg/storage/s3"
)

// Backend is an asset store plus its lifecycle hooks. Ping and Close are
// no-ops for backends that do not hold connections.
type Backend struct {
	assets.Store
	closer io.Closer
	pinger interface {
		Ping(ctx context.Context) error
	}
}

// Open builds the backend selected by cfg.Assets.Backend.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Assets.Backend)) {
	case config.AssetsBackendGCS:
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, fmt.Errorf("gcs assets: %w", err)
		}
		return &Backend{Store: client, closer: client, pinger: client}, nil
	case config.AssetsBackendS3:
		client, err := s3.New(ctx, cfg.S3, logg)
		if err != nil {
			return nil, fmt.Errorf("s3 assets: %w", err)
		}
		return &Backend{Store: client}, nil
	default:
		return nil, fmt.Errorf("unsupported assets backend %q", cfg.Assets.Backend)
	}
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.pinger == nil {
		return nil
	}
	return b.pinger.Ping(ctx)
}

func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

package cron

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/assets/assetstest"
	"github.com/aarav-aiphi/Backend/pkg/db/dbtest"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys []string

func (s staticKeys) PendingTempKeys(context.Context) ([]string, error) { return s, nil }

func TestTempAssetSweepKeepsRecentAndReferenced(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-8 * 24 * time.Hour)

	store := assetstest.NewMemory()
	store.Put("agents/temp/stale.png", old)
	store.Put("agents/temp/referenced.png", old)
	store.Put("agents/temp/fresh.png", now.Add(-time.Hour))
	store.Put("agents/live/logo.png", old)

	job, err := NewTempAssetSweepJob(TempAssetSweepJobParams{
		Logger:  testLogger(),
		Assets:  store,
		Changes: staticKeys{"agents/temp/referenced.png"},
	})
	require.NoError(t, err)
	job.(*tempAssetSweepJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	keys := store.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"agents/live/logo.png", "agents/temp/fresh.png", "agents/temp/referenced.png"}, keys)
}

func TestTempAssetSweepReportsDestroyFailures(t *testing.T) {
	store := assetstest.NewMemory()
	store.Put("agents/temp/stale.png", time.Now().Add(-30*24*time.Hour))
	store.FailDestroy = errors.New("denied")

	job, err := NewTempAssetSweepJob(TempAssetSweepJobParams{Logger: testLogger(), Assets: store, Changes: staticKeys{}})
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestPopularityJobFixesDriftedScores(t *testing.T) {
	conn := dbtest.Open(t)
	repo := listings.NewRepository(conn)
	ctx := context.Background()
	listing := &models.Listing{
		Name:         "scribe",
		WebsiteURL:   "https://scribe.example",
		AccessModel:  enums.AccessModelAPI,
		PricingModel: enums.PricingModelFree,
		Category:     "Writing",
		Industry:     "Media",
		Status:       enums.ListingStatusAccepted,
	}
	require.NoError(t, repo.Create(ctx, listing))
	require.NoError(t, conn.Model(&models.Listing{}).Where("id = ?", listing.ID).
		Updates(map[string]any{"likes": 2, "tried_by": 1, "popularity_score": 0}).Error)

	job, err := NewPopularityJob(testLogger(), repo)
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	stored, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.PopularityScore)
}

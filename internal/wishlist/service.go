package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/aarav-aiphi/Backend/internal/engagement"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo     *Repository
	Listings listings.Repository
	Tx       txRunner
	Recorder engagement.Recorder
}

// Service toggles and lists the listings a user liked or saved.
type Service interface {
	Toggle(ctx context.Context, kind Kind, userID, listingID uuid.UUID) (*ToggleResult, error)
	List(ctx context.Context, kind Kind, userID uuid.UUID, params pagination.Params) (*PageDTO, error)
}

type service struct {
	repo     *Repository
	listings listings.Repository
	tx       txRunner
	recorder engagement.Recorder
	now      func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	recorder := params.Recorder
	if recorder == nil {
		recorder = engagement.Noop{}
	}
	return &service{
		repo:     params.Repo,
		listings: params.Listings,
		tx:       params.Tx,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// Toggle flips the link between user and listing. The link row and the
// listing counter change in one transaction so counters match the links.
func (s *service) Toggle(ctx context.Context, kind Kind, userID, listingID uuid.UUID) (*ToggleResult, error) {
	if kind != KindLike && kind != KindWishlist {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown collection")
	}
	if userID == uuid.Nil || listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and agent ids are required")
	}

	var (
		active  bool
		listing *models.Listing
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listingRepo := s.listings.WithTx(tx)

		if _, err := listingRepo.FindByID(ctx, listingID); err != nil {
			return listings.MapWriteError(err, "load agent")
		}

		removed, err := repo.Remove(ctx, kind, userID, listingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove link")
		}
		delta := -1
		if !removed {
			active = true
			inserted, err := repo.Add(ctx, kind, userID, listingID, s.now().UTC())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add link")
			}
			delta = 0
			if inserted {
				delta = 1
			}
		}
		if delta != 0 {
			if err := listingRepo.AdjustCounters(ctx, listingID, kind.counters(delta)); err != nil {
				return listings.MapWriteError(err, "adjust counters")
			}
		}

		listing, err = listingRepo.FindByID(ctx, listingID)
		if err != nil {
			return listings.MapWriteError(err, "reload agent")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, engagement.Event{Type: kind.event(active), ListingID: &listingID, UserID: &userID})
	return &ToggleResult{
		Message: kind.message(active),
		Active:  active,
		Listing: listings.FromModel(listing),
	}, nil
}

// List returns a page of linked listings. Links whose listing was deleted
// are skipped.
func (s *service) List(ctx context.Context, kind Kind, userID uuid.UUID, params pagination.Params) (*PageDTO, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	entries, err := s.repo.Entries(ctx, kind, userID, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list links")
	}
	entries, next := pagination.Trim(entries, params.Limit, func(e entryRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	})

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ListingID)
	}
	rows, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agents")
	}
	byID := make(map[uuid.UUID]*models.Listing, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	items := make([]listings.ListingDTO, 0, len(entries))
	for _, e := range entries {
		if l, ok := byID[e.ListingID]; ok {
			items = append(items, *listings.FromModel(l))
		}
	}
	return &PageDTO{Items: items, Cursor: next}, nil
}

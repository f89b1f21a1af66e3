package listings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aarav-aiphi/Backend/internal/engagement"
	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// nameConstraint is the Postgres constraint name; sqliteNameColumn is how
// SQLite reports the same violation.
const (
	nameConstraint   = "listings_name_key"
	sqliteNameColumn = "listings.name"
)

// Service exposes listing reads and the non-moderated listing operations.
type Service interface {
	All(ctx context.Context) ([]ListingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	ByStatus(ctx context.Context, status enums.ListingStatus) ([]ListingDTO, error)
	Filters(ctx context.Context) (*FiltersDTO, error)
	Search(ctx context.Context, query string) ([]ListingDTO, error)
	TopLikedByCategory(ctx context.Context) ([]ListingDTO, error)
	Similar(ctx context.Context, id uuid.UUID) (*SimilarDTO, error)
	Create(ctx context.Context, input CreateInput) (*ListingDTO, error)
	MarkTried(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*ListingDTO, error)
}

// CreateInput is a listing created directly, bypassing moderation.
type CreateInput struct {
	Fields    Fields
	Logo      *assets.File
	Thumbnail *assets.File
}

type service struct {
	repo     Repository
	assets   assets.Store
	recorder engagement.Recorder
}

// NewService builds the listings service. recorder may be nil.
func NewService(repo Repository, store assets.Store, recorder engagement.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if recorder == nil {
		recorder = engagement.Noop{}
	}
	return &service{repo: repo, assets: store, recorder: recorder}, nil
}

func (s *service) All(ctx context.Context) ([]ListingDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(listing), nil
}

func (s *service) ByStatus(ctx context.Context, status enums.ListingStatus) ([]ListingDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings by status")
	}
	return FromModels(rows), nil
}

func (s *service) Filters(ctx context.Context) (*FiltersDTO, error) {
	out := &FiltersDTO{}
	facets := []struct {
		column string
		dst    *[]string
	}{
		{"category", &out.Categories},
		{"industry", &out.Industries},
		{"pricing_model", &out.PricingModels},
		{"access_model", &out.AccessModels},
	}
	for _, f := range facets {
		values, err := s.repo.Distinct(ctx, f.column)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+f.column+" filter")
		}
		*f.dst = values
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, query string) ([]ListingDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	terms := SearchTerms(query)
	if len(terms) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is too generic or contains only stop words")
	}

	rows, err := s.repo.ListByStatus(ctx, enums.ListingStatusAccepted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load searchable listings")
	}

	s.recorder.Record(ctx, engagement.Event{Type: enums.EngagementSearched, Query: query})
	return FromModels(Rank(rows, terms)), nil
}

func (s *service) TopLikedByCategory(ctx context.Context) ([]ListingDTO, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.ListingStatusAccepted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list accepted listings")
	}

	top := map[string]models.Listing{}
	for _, l := range rows {
		best, ok := top[l.Category]
		if !ok || l.Likes > best.Likes {
			top[l.Category] = l
		}
	}
	out := make([]models.Listing, 0, len(top))
	for _, l := range top {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return FromModels(out), nil
}

func (s *service) Similar(ctx context.Context, id uuid.UUID) (*SimilarDTO, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.ListAcceptedExcept(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list similar candidates")
	}
	return &SimilarDTO{
		Listing:     FromModel(listing),
		BestMatches: FromModels(BestMatches(*listing, candidates, SimilarLimit)),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ListingDTO, error) {
	fields := input.Fields
	if err := fields.ValidateCreate(); err != nil {
		return nil, err
	}

	if input.Logo != nil {
		asset, err := assets.UploadFile(ctx, s.assets, assets.FolderAgents, *input.Logo)
		if err != nil {
			return nil, err
		}
		fields.Logo = &asset.URL
	}
	if input.Thumbnail != nil {
		asset, err := assets.UploadFile(ctx, s.assets, assets.FolderAgents, *input.Thumbnail)
		if err != nil {
			return nil, err
		}
		fields.Thumbnail = &asset.URL
	}

	listing := fields.ToModel()
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, MapWriteError(err, "create listing")
	}
	return FromModel(listing), nil
}

func (s *service) MarkTried(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*ListingDTO, error) {
	if err := s.repo.AdjustCounters(ctx, id, Counters{TriedBy: 1}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment tried by")
	}
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, engagement.Event{Type: enums.EngagementTried, ListingID: &id, UserID: userID})
	return FromModel(listing), nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load listing")
	}
	return listing, nil
}

// MapWriteError translates persistence errors raised while writing a listing.
func MapWriteError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	case db.IsUniqueViolation(err, nameConstraint), db.IsUniqueViolation(err, sqliteNameColumn):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a listing with this name already exists").
			WithDetails(map[string]any{"field": "name"})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
	}
}

package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryLimit caps how many saved searches are returned.
const HistoryLimit = 50

const maxQueryLength = 500

// SearchEntryDTO is one saved search.
type SearchEntryDTO struct {
	ID        uuid.UUID                `json:"id"`
	Query     string                   `json:"query"`
	Results   []models.SearchResultRef `json:"results"`
	CreatedAt time.Time                `json:"createdAt"`
}

// HistoryRepository persists saved searches.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository binds a search history repository to db.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores one entry.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.SearchHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Results == nil {
		entry.Results = []models.SearchResultRef{}
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Latest returns the newest entries for a user, newest first.
func (r *HistoryRepository) Latest(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistoryEntry, error) {
	var rows []models.SearchHistoryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

type historyStore interface {
	Append(ctx context.Context, entry *models.SearchHistoryEntry) error
	Latest(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistoryEntry, error)
}

// HistoryService records and lists the searches a user saved.
type HistoryService struct {
	store historyStore
	now   func() time.Time
}

// NewHistoryService builds the saved-search service.
func NewHistoryService(store historyStore) (*HistoryService, error) {
	if store == nil {
		return nil, fmt.Errorf("history store is required")
	}
	return &HistoryService{store: store, now: time.Now}, nil
}

// Save appends a query to the user's history.
func (s *HistoryService) Save(ctx context.Context, userID uuid.UUID, query string, results []models.SearchResultRef) (*SearchEntryDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Search query is required")
	}
	if len(query) > maxQueryLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is too long")
	}

	entry := &models.SearchHistoryEntry{
		UserID:    userID,
		Query:     query,
		Results:   results,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save search")
	}
	dto := entryDTO(*entry)
	return &dto, nil
}

// List returns the latest saved searches.
func (s *HistoryService) List(ctx context.Context, userID uuid.UUID) ([]SearchEntryDTO, error) {
	rows, err := s.store.Latest(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list search history")
	}
	out := make([]SearchEntryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryDTO(row))
	}
	return out, nil
}

func entryDTO(row models.SearchHistoryEntry) SearchEntryDTO {
	results := []models.SearchResultRef(row.Results)
	if results == nil {
		results = []models.SearchResultRef{}
	}
	return SearchEntryDTO{ID: row.ID, Query: row.Query, Results: results, CreatedAt: row.CreatedAt}
}

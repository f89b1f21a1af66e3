package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/newsapi"
)

const (
	DefaultQuery    = "Artificial Intelligence OR AI Agents OR Machine Learning"
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 100

	sourcesCacheID = "sources"
)

type provider interface {
	Everything(ctx context.Context, req newsapi.EverythingRequest) (json.RawMessage, error)
	TechnologySources(ctx context.Context) (json.RawMessage, error)
}

type jsonCache interface {
	Get(ctx context.Context, id string, dest any) (bool, error)
	Set(ctx context.Context, id string, value any, ttl time.Duration) error
}

// Query selects a page of articles.
type Query struct {
	Q        string
	Sources  string
	Page     int
	PageSize int
}

func (q Query) normalized() Query {
	q.Q = strings.TrimSpace(q.Q)
	if q.Q == "" {
		q.Q = DefaultQuery
	}
	q.Sources = strings.TrimSpace(q.Sources)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (q Query) cacheID() string {
	return "q=" + q.Q + "&sources=" + q.Sources + "&page=" + strconv.Itoa(q.Page) + "&pageSize=" + strconv.Itoa(q.PageSize)
}

// SourcesResponse wraps the sources list the way clients expect it.
type SourcesResponse struct {
	Sources json.RawMessage `json:"sources"`
}

// Service proxies the news provider behind a read-through cache.
type Service interface {
	Articles(ctx context.Context, q Query) (json.RawMessage, error)
	Sources(ctx context.Context) (*SourcesResponse, error)
}

type ServiceParams struct {
	Provider provider
	Cache    jsonCache
	Config   config.NewsConfig
	Logger   *logger.Logger
}

type service struct {
	provider    provider
	cache       jsonCache
	articlesTTL time.Duration
	sourcesTTL  time.Duration
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("news provider is required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("news cache is required")
	}
	articlesTTL := params.Config.ArticlesTTL
	if articlesTTL <= 0 {
		articlesTTL = time.Hour
	}
	sourcesTTL := params.Config.SourcesTTL
	if sourcesTTL <= 0 {
		sourcesTTL = 24 * time.Hour
	}
	return &service{
		provider:    params.Provider,
		cache:       params.Cache,
		articlesTTL: articlesTTL,
		sourcesTTL:  sourcesTTL,
		logg:        params.Logger,
	}, nil
}

func (s *service) Articles(ctx context.Context, q Query) (json.RawMessage, error) {
	q = q.normalized()
	id := q.cacheID()

	var cached json.RawMessage
	if ok := s.lookup(ctx, id, &cached); ok {
		return cached, nil
	}

	body, err := s.provider.Everything(ctx, newsapi.EverythingRequest{
		Query:    q.Q,
		Sources:  q.Sources,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error fetching news articles")
	}
	s.store(ctx, id, body, s.articlesTTL)
	return body, nil
}

func (s *service) Sources(ctx context.Context) (*SourcesResponse, error) {
	var cached json.RawMessage
	if ok := s.lookup(ctx, sourcesCacheID, &cached); ok {
		return &SourcesResponse{Sources: cached}, nil
	}

	sources, err := s.provider.TechnologySources(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error fetching news sources")
	}
	s.store(ctx, sourcesCacheID, sources, s.sourcesTTL)
	return &SourcesResponse{Sources: sources}, nil
}

// cache failures degrade to a provider call
func (s *service) lookup(ctx context.Context, id string, dest *json.RawMessage) bool {
	ok, err := s.cache.Get(ctx, id, dest)
	if err != nil {
		s.warn(ctx, err, "news cache read failed")
		return false
	}
	return ok && len(*dest) > 0
}

func (s *service) store(ctx context.Context, id string, value json.RawMessage, ttl time.Duration) {
	if err := s.cache.Set(ctx, id, value, ttl); err != nil {
		s.warn(ctx, err, "news cache write failed")
	}
}

func (s *service) warn(ctx context.Context, err error, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

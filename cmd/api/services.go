package main

import (
	"context"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aarav-aiphi/Backend/internal/auth"
	"github.com/aarav-aiphi/Backend/internal/blogs"
	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/internal/contacts"
	"github.com/aarav-aiphi/Backend/internal/engagement"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/internal/news"
	"github.com/aarav-aiphi/Backend/internal/newsletter"
	"github.com/aarav-aiphi/Backend/internal/usecases"
	"github.com/aarav-aiphi/Backend/internal/users"
	"github.com/aarav-aiphi/Backend/internal/wishlist"
	"github.com/aarav-aiphi/Backend/pkg/auth/oauth"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	pkgbigquery "github.com/aarav-aiphi/Backend/pkg/bigquery"
	"github.com/aarav-aiphi/Backend/pkg/cache"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/db"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/aarav-aiphi/Backend/pkg/metrics"
	"github.com/aarav-aiphi/Backend/pkg/newsapi"
	pkgpubsub "github.com/aarav-aiphi/Backend/pkg/pubsub"
	"github.com/aarav-aiphi/Backend/pkg/redis"
	"github.com/aarav-aiphi/Backend/pkg/storage"
)

type services struct {
	users       *users.Repository
	auth        auth.Service
	history     *users.HistoryService
	collections wishlist.Service
	listings    listings.Service
	changes     changes.Service
	blogs       blogs.Service
	contacts    *contacts.Service
	newsletter  *newsletter.Service
	useCases    *usecases.Service
	news        news.Service

	recorder *engagement.BufferedRecorder
	notifier *mail.Notifier
	pubsub   *pkgpubsub.Client
	bigquery *pkgbigquery.Client
	logg     *logger.Logger
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions *session.Manager,
	assetStore *storage.Backend,
	reg prometheus.Registerer,
) (*services, error) {
	s := &services{logg: logg}
	conn := dbClient.DB()

	if strings.EqualFold(cfg.Mail.Transport, config.MailTransportPubSub) {
		client, err := pkgpubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, pkgpubsub.RolePublisher, logg)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		s.pubsub = client
	}
	sender, err := mail.NewSender(cfg, s.mailPublisher())
	if err != nil {
		return nil, fmt.Errorf("mail sender: %w", err)
	}
	s.notifier = mail.NewNotifier(sender, logg, cfg.Mail.Timeout)

	var recorder engagement.Recorder = engagement.Noop{}
	if cfg.FeatureFlags.Engagement {
		bq, err := pkgbigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			return nil, fmt.Errorf("bigquery: %w", err)
		}
		s.bigquery = bq
		writer, err := engagement.NewWriter(bq, engagement.RetryPolicy{})
		if err != nil {
			return nil, fmt.Errorf("engagement writer: %w", err)
		}
		s.recorder, err = engagement.NewBufferedRecorder(writer, logg, engagement.RecorderConfig{})
		if err != nil {
			return nil, fmt.Errorf("engagement recorder: %w", err)
		}
		recorder = s.recorder
	}

	s.users = users.NewRepository(conn)
	authParams := auth.ServiceParams{
		UserRepo:       s.users,
		SessionManager: sessions,
		Mailer:         s.notifier,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		FrontendURL:    cfg.App.FrontendURL,
	}
	if cfg.GoogleOAuth.Enabled() {
		google, err := oauth.NewGoogle(ctx, cfg.GoogleOAuth, redisClient)
		if err != nil {
			return nil, fmt.Errorf("google oauth: %w", err)
		}
		authParams.Google = google
	} else {
		logg.Warn(ctx, "google sign-in disabled")
	}
	if s.auth, err = auth.NewService(authParams); err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	if s.history, err = users.NewHistoryService(users.NewHistoryRepository(conn)); err != nil {
		return nil, fmt.Errorf("history service: %w", err)
	}

	listingRepo := listings.NewRepository(conn)
	if s.listings, err = listings.NewService(listingRepo, assetStore, recorder); err != nil {
		return nil, fmt.Errorf("listings service: %w", err)
	}

	if s.collections, err = wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlist.NewRepository(conn),
		Listings: listingRepo,
		Tx:       dbClient,
		Recorder: recorder,
	}); err != nil {
		return nil, fmt.Errorf("wishlist service: %w", err)
	}

	if s.changes, err = changes.NewService(changes.ServiceParams{
		Repo:     changes.NewRepository(conn),
		Listings: listingRepo,
		Users:    s.users,
		Tx:       dbClient,
		Assets:   assetStore,
		Notifier: s.notifier,
		Metrics:  metrics.NewChangeMetrics(reg),
		Logger:   logg,
	}); err != nil {
		return nil, fmt.Errorf("changes service: %w", err)
	}

	if s.blogs, err = blogs.NewService(blogs.ServiceParams{
		Repo:          blogs.NewRepository(conn),
		Assets:        assetStore,
		Logger:        logg,
		MaxImageBytes: cfg.App.MaxUploadBytes(),
	}); err != nil {
		return nil, fmt.Errorf("blogs service: %w", err)
	}

	if s.contacts, err = contacts.NewService(contacts.NewRepository(conn)); err != nil {
		return nil, fmt.Errorf("contacts service: %w", err)
	}
	if s.newsletter, err = newsletter.NewService(newsletter.ServiceParams{
		Repo:   newsletter.NewRepository(conn),
		Mailer: s.notifier,
		Logger: logg,
	}); err != nil {
		return nil, fmt.Errorf("newsletter service: %w", err)
	}
	if s.useCases, err = usecases.NewService(usecases.NewRepository(conn)); err != nil {
		return nil, fmt.Errorf("use cases service: %w", err)
	}

	if cfg.News.APIKey == "" {
		logg.Warn(ctx, "news api key missing, news routes disabled")
	} else {
		provider, err := newsapi.NewClient(cfg.News.APIKey,
			newsapi.WithBaseURL(cfg.News.BaseURL),
			newsapi.WithTimeout(cfg.News.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("news client: %w", err)
		}
		newsCache, err := cache.NewJSON(redisClient, "news")
		if err != nil {
			return nil, fmt.Errorf("news cache: %w", err)
		}
		if s.news, err = news.NewService(news.ServiceParams{
			Provider: provider,
			Cache:    newsCache,
			Config:   cfg.News,
			Logger:   logg,
		}); err != nil {
			return nil, fmt.Errorf("news service: %w", err)
		}
	}

	return s, nil
}

func (s *services) mailPublisher() *pubsub.Publisher {
	if s.pubsub == nil {
		return nil
	}
	return s.pubsub.MailPublisher()
}

// close waits for queued mail, then releases the Google clients.
func (s *services) close() {
	s.notifier.Wait()
	if s.pubsub != nil {
		if err := s.pubsub.Close(); err != nil {
			s.logg.Error(context.Background(), "error closing pubsub", err)
		}
	}
	if s.bigquery != nil {
		if err := s.bigquery.Close(); err != nil {
			s.logg.Error(context.Background(), "error closing bigquery", err)
		}
	}
}

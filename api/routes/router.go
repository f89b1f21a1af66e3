package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aarav-aiphi/Backend/api/controllers"
	"github.com/aarav-aiphi/Backend/api/middleware"
	"github.com/aarav-aiphi/Backend/internal/auth"
	"github.com/aarav-aiphi/Backend/internal/blogs"
	"github.com/aarav-aiphi/Backend/internal/changes"
	"github.com/aarav-aiphi/Backend/internal/listings"
	"github.com/aarav-aiphi/Backend/internal/news"
	"github.com/aarav-aiphi/Backend/internal/wishlist"
	"github.com/aarav-aiphi/Backend/pkg/auth/session"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Health      map[string]controllers.Pinger
	Metrics     prometheus.Gatherer
	Sessions    session.AccessSessionChecker
	RateLimits  middleware.RateLimiterStore
	Idempotency middleware.IdempotencyStore
	Users       middleware.RoleLookup

	Auth        auth.Service
	History     controllers.SearchHistory
	Collections wishlist.Service
	Listings    listings.Service
	Changes     changes.Service
	Blogs       blogs.Service
	Contacts    controllers.ContactService
	Newsletter  controllers.NewsletterService
	UseCases    controllers.UseCaseService
	News        news.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	cookie := controllers.NewCookieSettings(cfg)

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS, cfg.App.FrontendURL),
		chimw.RequestSize(maxBodyBytes(cfg)),
	)

	limits := cfg.AuthRateLimit
	loginThrottle := middleware.Throttle(middleware.ThrottleRule{Name: "login", Window: limits.LoginWindow, PerIP: limits.LoginIPLimit, PerEmail: limits.LoginEmailLimit}, deps.RateLimits, logg)
	signupThrottle := middleware.Throttle(middleware.ThrottleRule{Name: "signup", Window: limits.RegisterWindow, PerIP: limits.RegisterIPLimit, PerEmail: limits.RegisterEmailLimit}, deps.RateLimits, logg)
	forgotThrottle := middleware.Throttle(middleware.ThrottleRule{Name: "forgot-password", Window: limits.ForgotWindow, PerIP: limits.ForgotIPLimit, PerEmail: limits.ForgotEmailLimit}, deps.RateLimits, logg)

	requireAuth := middleware.Auth(cfg.JWT, cookie.Name, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, cookie.Name, deps.Sessions, logg)
	resolveRole := middleware.ResolveRole(deps.Users, logg)
	idempotent := middleware.Idempotent(deps.Idempotency, middleware.IdempotencyPolicy{TTL: 24 * time.Hour}, logg)
	decision := middleware.Idempotent(deps.Idempotency, middleware.IdempotencyPolicy{TTL: 7 * 24 * time.Hour}, logg)
	broadcast := middleware.Idempotent(deps.Idempotency, middleware.IdempotencyPolicy{TTL: 7 * 24 * time.Hour, Required: true}, logg)
	adminOnly := chi.Chain(requireAuth, resolveRole, middleware.RequireRole(enums.UserRoleAdmin, logg))
	superadminOnly := chi.Chain(requireAuth, resolveRole, middleware.RequireRole(enums.UserRoleSuperadmin, logg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	gatherer := deps.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/users", func(r chi.Router) {
		r.With(signupThrottle).Post("/signup", controllers.AuthSignup(deps.Auth, cookie, logg))
		r.With(loginThrottle).Post("/login", controllers.AuthLogin(deps.Auth, cookie, logg))
		r.With(optionalAuth).Post("/logout", controllers.AuthLogout(deps.Auth, cookie, logg))
		r.With(forgotThrottle).Post("/forgot-password", controllers.AuthForgotPassword(deps.Auth, logg))
		r.Post("/reset-password/{token}", controllers.AuthResetPassword(deps.Auth, logg))
		r.Get("/auth/google", controllers.AuthGoogleBegin(deps.Auth, logg))
		r.Get("/auth/google/callback", controllers.AuthGoogleCallback(deps.Auth, cookie, cfg.App.FrontendURL, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/current_user", controllers.AuthCurrentUser(deps.Auth, logg))
			r.Post("/like/{id}", controllers.ToggleCollection(deps.Collections, wishlist.KindLike, logg))
			r.Post("/wishlist/{id}", controllers.ToggleCollection(deps.Collections, wishlist.KindWishlist, logg))
			r.Get("/wishlist", controllers.ListCollection(deps.Collections, wishlist.KindWishlist, logg))
			r.Get("/liked-agents", controllers.ListCollection(deps.Collections, wishlist.KindLike, logg))
			r.Post("/save-search", controllers.SaveSearch(deps.History, logg))
			r.Get("/search-history", controllers.ListSearchHistory(deps.History, logg))
		})
	})

	r.Route("/api/agents", func(r chi.Router) {
		r.Get("/all", controllers.AgentsAll(deps.Listings, logg))
		r.Get("/filters", controllers.AgentsFilters(deps.Listings, logg))
		r.Get("/search", controllers.AgentsSearch(deps.Listings, logg))
		r.Get("/top-likes-by-category", controllers.AgentsTopLiked(deps.Listings, logg))
		r.Get("/similar/{id}", controllers.AgentsSimilar(deps.Listings, logg))
		r.With(optionalAuth, idempotent).Post("/create", controllers.AgentsCreate(deps.Listings, logg))
		r.With(optionalAuth).Post("/triedby/{id}", controllers.AgentsTried(deps.Listings, logg))
		r.Get("/{id}", controllers.AgentsGet(deps.Listings, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminOnly...)
		r.Get("/agents/{status}", controllers.AdminAgentsByStatus(deps.Listings, logg))
		r.Delete("/agents/{id}", controllers.AdminDeleteAgent(deps.Changes, logg))
		r.Put("/agents/{id}/status", controllers.AdminChangeStatus(deps.Changes, logg))
		r.With(idempotent).Put("/update/{id}", controllers.AdminUpdateAgent(deps.Changes, logg))
		r.With(idempotent).Post("/bulk-upload-csv", controllers.AdminBulkUpload(deps.Changes, logg))
		r.Get("/myrequests", controllers.AdminMyRequests(deps.Changes, logg))
	})

	r.Route("/api/superadmin", func(r chi.Router) {
		r.Use(superadminOnly...)
		r.Get("/pending-changes", controllers.PendingChanges(deps.Changes, logg))
		r.With(decision).Post("/approve/{id}", controllers.ApproveChange(deps.Changes, logg))
		r.With(decision).Post("/reject/{id}", controllers.RejectChange(deps.Changes, logg))
	})

	r.Route("/api/blogs", func(r chi.Router) {
		r.Get("/", controllers.BlogsList(deps.Blogs, logg))
		r.Get("/{id}", controllers.BlogsGet(deps.Blogs, logg))
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.With(idempotent).Post("/", controllers.BlogsCreate(deps.Blogs, logg))
			r.Post("/upload-image", controllers.BlogsUploadImage(deps.Blogs, logg))
			r.Put("/{id}", controllers.BlogsUpdate(deps.Blogs, logg))
			r.Delete("/{id}", controllers.BlogsDelete(deps.Blogs, logg))
		})
	})

	r.With(idempotent).Post("/api/contact", controllers.ContactSubmit(deps.Contacts, logg))

	r.Route("/api/newsletter", func(r chi.Router) {
		r.Post("/subscribe", controllers.NewsletterSubscribe(deps.Newsletter, logg))
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Get("/subscribers", controllers.NewsletterSubscribers(deps.Newsletter, logg))
			r.With(broadcast).Post("/send", controllers.NewsletterSend(deps.Newsletter, logg))
			r.With(idempotent).Post("/send-test-email", controllers.NewsletterSendTest(deps.Newsletter, logg))
		})
	})

	r.Route("/api/usecase", func(r chi.Router) {
		r.Get("/", controllers.UseCasesList(deps.UseCases, logg))
		r.With(adminOnly...).Post("/usecase", controllers.UseCasesCreate(deps.UseCases, logg))
	})

	if deps.News != nil {
		r.Route("/api/news", func(r chi.Router) {
			r.Get("/", controllers.NewsArticles(deps.News, logg))
			r.Get("/sources", controllers.NewsSources(deps.News, logg))
		})
	}

	return r
}

// maxBodyBytes bounds request bodies: a few images per multipart form on top
// of the per-file limit.
func maxBodyBytes(cfg *config.Config) int64 {
	return cfg.App.MaxUploadBytes()*8 + 1<<20
}

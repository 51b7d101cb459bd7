package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drobeapp/drobe-backend/api/controllers"
	"github.com/drobeapp/drobe-backend/api/middleware"
	"github.com/drobeapp/drobe-backend/internal/auth"
	"github.com/drobeapp/drobe-backend/internal/recommend"
	"github.com/drobeapp/drobe-backend/internal/uploads"
	"github.com/drobeapp/drobe-backend/internal/wardrobe"
	"github.com/drobeapp/drobe-backend/internal/weather"
	"github.com/drobeapp/drobe-backend/pkg/auth/session"
	"github.com/drobeapp/drobe-backend/pkg/config"
	"github.com/drobeapp/drobe-backend/pkg/db"
	"github.com/drobeapp/drobe-backend/pkg/logger"
	"github.com/drobeapp/drobe-backend/pkg/metrics"
	"github.com/drobeapp/drobe-backend/pkg/redis"
	"github.com/drobeapp/drobe-backend/pkg/storage/blob"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Params collects everything the router mounts.
type Params struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	BlobStore       blob.Store
	ContentHandler  http.Handler
	SessionManager  sessionManager
	AuthService     auth.Service
	RegisterService auth.RegisterService
	ItemService     wardrobe.Service
	UploadGate      *uploads.Gate
	WeatherClient   weather.Client
	RecommendClient recommend.Client
	HTTPMetrics     *metrics.HTTPMetrics
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis, p.BlobStore))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ping", controllers.PublicPing())

	if p.ContentHandler != nil {
		r.Handle(cfg.Storage.ContentPrefix+"/*", p.ContentHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Get("/me/ping", controllers.PrivatePing())

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemsCreate(p.ItemService, p.UploadGate, logg))
			r.Get("/", controllers.ItemsList(p.ItemService, logg))
			r.Get("/{itemId}", controllers.ItemsGet(p.ItemService, logg))
			r.Put("/{itemId}", controllers.ItemsUpdate(p.ItemService, p.UploadGate, logg))
			r.Delete("/{itemId}", controllers.ItemsDelete(p.ItemService, logg))
		})

		r.Get("/weather", controllers.Weather(p.WeatherClient, logg))
		r.Get("/recommendations", controllers.Recommendations(p.RecommendClient, logg))
	})

	return r
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drobeapp/drobe-backend/api/routes"
	"github.com/drobeapp/drobe-backend/internal/auth"
	"github.com/drobeapp/drobe-backend/internal/recommend"
	"github.com/drobeapp/drobe-backend/internal/uploads"
	"github.com/drobeapp/drobe-backend/internal/users"
	"github.com/drobeapp/drobe-backend/internal/wardrobe"
	"github.com/drobeapp/drobe-backend/internal/weather"
	"github.com/drobeapp/drobe-backend/pkg/auth/session"
	"github.com/drobeapp/drobe-backend/pkg/config"
	"github.com/drobeapp/drobe-backend/pkg/db"
	"github.com/drobeapp/drobe-backend/pkg/logger"
	"github.com/drobeapp/drobe-backend/pkg/metrics"
	"github.com/drobeapp/drobe-backend/pkg/migrate"
	"github.com/drobeapp/drobe-backend/pkg/redis"
	"github.com/drobeapp/drobe-backend/pkg/storage/blob"
	"github.com/drobeapp/drobe-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	blobStore, contentHandler, err := buildBlobStore(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap blob storage", err)
		os.Exit(1)
	}

	uploadGate, err := uploads.NewGate(blobStore, cfg.Upload)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload gate", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	itemService, err := wardrobe.NewService(wardrobe.ServiceParams{
		ItemRepo:  wardrobe.NewRepository(dbClient.DB()),
		BlobStore: blobStore,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	weatherClient, err := weather.NewScriptClient(cfg.Scripts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create weather client", err)
		os.Exit(1)
	}

	recommendClient, err := recommend.NewScriptClient(cfg.Scripts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create recommendation client", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			BlobStore:       blobStore,
			ContentHandler:  contentHandler,
			SessionManager:  sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			ItemService:     itemService,
			UploadGate:      uploadGate,
			WeatherClient:   weatherClient,
			RecommendClient: recommendClient,
			HTTPMetrics:     httpMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildBlobStore picks the storage backend and its matching content handler.
func buildBlobStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (blob.Store, http.Handler, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendGCS:
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := blob.NewGCSStore(client, cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil
	default:
		store, err := blob.NewFSStore(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil
	}
}

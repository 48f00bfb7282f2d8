package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/finreports/insightd/internal/application"
	appnarrative "github.com/finreports/insightd/internal/application/narrative"
	appreports "github.com/finreports/insightd/internal/application/reports"
	"github.com/finreports/insightd/internal/config"
	domain "github.com/finreports/insightd/internal/domain/reports"
	aiopenai "github.com/finreports/insightd/internal/infra/ai/openai"
	mysqlp "github.com/finreports/insightd/internal/infra/db/mysql"
	postgresp "github.com/finreports/insightd/internal/infra/db/postgres"
	"github.com/finreports/insightd/internal/infra/httpserver"
	minioStore "github.com/finreports/insightd/internal/infra/storage"
	"github.com/finreports/insightd/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// connect database, driver selected by config
	var (
		db       *sql.DB
		fileRepo domain.FileRepository
		repo     domain.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			slog.Error("postgres connect error", "err", err)
			os.Exit(1)
		}
		if err := postgresp.EnsureSchema(ctx, db); err != nil {
			slog.Error("postgres schema error", "err", err)
			os.Exit(1)
		}
		fileRepo = postgresp.NewFileRepository(db)
		repo = postgresp.NewReportRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			slog.Error("mysql connect error", "err", err)
			os.Exit(1)
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			slog.Error("mysql schema error", "err", err)
			os.Exit(1)
		}
		fileRepo = mysqlp.NewFileRepository(db)
		repo = mysqlp.NewReportRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		slog.Error("minio init error", "err", err)
		os.Exit(1)
	}

	// init services
	reportsSvc := &appreports.Service{
		Files:             fileRepo,
		Reports:           repo,
		Artifacts:         store,
		Clock:             application.SystemClock{},
		AllowedExtensions: cfg.AllowedExtensionSet(),
	}
	narrativeSvc := &appnarrative.Service{Reports: repo}
	if cfg.OpenAI.APIKey != "" {
		narrativeSvc.Client = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage":  middleware.HealthCheckerFunc(store.Healthy),
	})

	// init router with the middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if cfg.RateLimit.Enabled {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	if cfg.Auth.Enabled {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireTenantMatch(func(r *http.Request) string {
			return chi.URLParam(r, "tenant")
		}))
	}
	mux.Mount("/", httpserver.NewRouter(reportsSvc, narrativeSvc, cfg.MaxUploadBytes(), health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

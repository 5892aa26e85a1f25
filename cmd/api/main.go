package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-agent-platform/internal/agents"
	"voice-agent-platform/internal/audiocache"
	"voice-agent-platform/internal/audit"
	"voice-agent-platform/internal/auth"
	"voice-agent-platform/internal/calls"
	"voice-agent-platform/internal/config"
	"voice-agent-platform/internal/httpapi"
	"voice-agent-platform/internal/organizations"
	"voice-agent-platform/internal/reporting"
	"voice-agent-platform/internal/settings"
	"voice-agent-platform/internal/storage"
	"voice-agent-platform/internal/telephony"
	"voice-agent-platform/internal/voiceai"
	"voice-agent-platform/pkg/logger"
	"voice-agent-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, cfg.App.Name)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, cleanup, err := build(rootCtx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, cfg, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"storage", cfg.Storage.Driver,
			"audio_cache", cfg.Redis.AudioCacheDriver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// dependencies is everything the routes need.
type dependencies struct {
	api      httpapi.Handlers
	webhooks *telephony.WebhookHandler
	db       *sql.DB
}

// build opens storage, constructs services and seeds demo data when asked.
// The returned cleanup closes any open connections.
func build(ctx context.Context, cfg config.Config, log *slog.Logger) (dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		db         *sql.DB
		agentRepo  agents.Repository
		callRepo   calls.Repository
		orgRepo    organizations.Repository
		auditRepo  audit.Repository
		settingsDB settings.Repository
	)
	switch cfg.Storage.Driver {
	case "postgres":
		var err error
		db, err = utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return dependencies{}, cleanup, fmt.Errorf("postgres init: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := storage.Migrate(ctx, db); err != nil {
			return dependencies{}, cleanup, err
		}
		pgAudit := audit.NewPostgresRepo(db)
		agentRepo = agents.NewPostgresRepo(db)
		callRepo = calls.NewPostgresRepo(db)
		orgRepo = organizations.NewPostgresRepo(db)
		auditRepo = pgAudit
		settingsDB = settings.NewPostgresRepo(db, pgAudit)
	default:
		memAudit := audit.NewMemoryRepo()
		agentRepo = agents.NewMemoryRepo()
		callRepo = calls.NewMemoryRepo()
		orgRepo = organizations.NewMemoryRepo()
		auditRepo = memAudit
		settingsDB = settings.NewMemoryRepo(memAudit)
	}

	var audio audiocache.Store
	switch cfg.Redis.AudioCacheDriver {
	case "redis":
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return dependencies{}, cleanup, fmt.Errorf("redis init: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		audio = audiocache.NewRedisStore(rdb, cfg.Providers.AudioCacheTTL)
	default:
		audio = audiocache.NewMemoryStore(cfg.Providers.AudioCacheTTL)
	}

	authn, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return dependencies{}, cleanup, fmt.Errorf("auth init: %w", err)
	}

	dir := agents.NewDirectory(agentRepo)
	ledger := calls.NewLedger(callRepo)
	orgs := organizations.NewService(orgRepo)
	store := settings.NewStore(settingsDB, audit.NewService(auditRepo), cfg.Defaults)

	if cfg.App.SeedDemoData {
		if err := storage.SeedDemoData(ctx, orgs, dir, log); err != nil {
			return dependencies{}, cleanup, err
		}
	}

	// Per-call deadlines come from the provider timeouts via context.
	providerClient := &http.Client{}

	webhooks := telephony.NewWebhookHandler(telephony.WebhookDeps{
		Agents:    dir,
		Ledger:    ledger,
		Settings:  store,
		Generator: voiceai.NewGenerator(cfg.Providers, providerClient),
		Speech:    voiceai.NewSynthesizer(cfg.Providers, providerClient),
		Audio:     audio,
		URLs:      telephony.URLBuilder{PublicBaseURL: cfg.App.PublicBaseURL},
	})

	return dependencies{
		api: httpapi.Handlers{
			Service:       cfg.App.Name,
			Environment:   cfg.App.Env,
			Auth:          authn,
			Agents:        dir,
			Calls:         ledger,
			Organizations: orgs,
			Dashboard:     reporting.NewService(orgs, dir, ledger),
			Settings:      store,
		},
		webhooks: webhooks,
		db:       db,
	}, cleanup, nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/analysis-gateway/internal/application"
	appanalyses "github.com/bryanwahyu/analysis-gateway/internal/application/analyses"
	"github.com/bryanwahyu/analysis-gateway/internal/application/encoder"
	"github.com/bryanwahyu/analysis-gateway/internal/application/normalize"
	"github.com/bryanwahyu/analysis-gateway/internal/config"
	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-gateway/internal/domain/triggers"
	mysqlp "github.com/bryanwahyu/analysis-gateway/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/analysis-gateway/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/analysis-gateway/internal/infra/db/sqlite"
	"github.com/bryanwahyu/analysis-gateway/internal/infra/httpserver"
	"github.com/bryanwahyu/analysis-gateway/internal/infra/relay"
	"github.com/bryanwahyu/analysis-gateway/internal/logger"
	"github.com/bryanwahyu/analysis-gateway/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.Log.Fatalf("config load error: %v", err)
	}
	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	ctx := context.Background()

	// init registry; every configured id needs a normalizer
	reg, err := analysis.NewRegistry(cfg.Descriptors())
	if err != nil {
		logger.Log.Fatalf("analysis registry error: %v", err)
	}
	for _, d := range reg.List() {
		if !normalize.Supports(d.ID) {
			logger.Log.Fatalf("analysis %q has no response normalizer", d.ID)
		}
	}

	checkers := map[string]middleware.HealthChecker{
		"analyses": middleware.RegistryHealthChecker{Count: func() int { return len(reg.List()) }},
	}

	// init trigger log (optional)
	repo, sqlDB, err := openTriggerLog(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("trigger log init error: %v", err)
	}
	if sqlDB != nil {
		defer sqlDB.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: sqlDB}
	}

	client := relay.NewClient(time.Duration(cfg.Relay.TimeoutSeconds) * time.Second)

	// init service
	svc := &appanalyses.Service{
		Registry: reg,
		Encoder:  encoder.New(),
		Relay:    client,
		Triggers: repo,
		Clock:    application.SystemClock{},
	}

	limiter := middleware.NewRateLimiter(cfg.Relay.RateLimit.RPS, cfg.Relay.RateLimit.Burst)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)
	defer close(stopSweep)

	// init router
	handler := httpserver.NewRouter(svc, client, httpserver.Options{
		AllowedOrigins: cfg.Relay.AllowedOrigins,
		AllowedHosts:   cfg.Relay.AllowedHosts,
		MaxBodyBytes:   int64(cfg.Relay.MaxBodyMB) << 20,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		RateLimiter:    limiter,
		Sessions:       cfg.APIKeys(),
		HealthCheckers: checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Log.WithField("analyses", len(reg.List())).Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Log.Errorf("shutdown error: %v", err)
	}
}

// openTriggerLog picks the repository for database.driver. An empty driver
// disables the trigger log.
func openTriggerLog(ctx context.Context, cfg *config.Config) (triggers.Repository, *sql.DB, error) {
	dsn := cfg.DatabaseDSN()
	switch cfg.Database.Driver {
	case "":
		logger.Log.Warn("database.driver empty, trigger log disabled")
		return nil, nil, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := mysqlp.NewTriggerRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	case "postgres":
		db, err := pgp.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := pgp.NewTriggerRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	case "sqlite":
		gdb, err := sqlitep.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		return sqlitep.NewTriggerRepository(gdb), db, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stwalsh4118/taxsale/api/internal/config"
	"github.com/stwalsh4118/taxsale/api/internal/database"
	"github.com/stwalsh4118/taxsale/api/internal/handlers"
	"github.com/stwalsh4118/taxsale/api/internal/jobs"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	// limiterPruneSpec is how often idle rate-limit buckets are dropped.
	limiterPruneSpec = "@every 10m"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting Taxsale API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", err, nil)
	}
	log.Info("Server exited", nil)
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database %s:%s/%s: %w", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
	}
	defer db.Close()
	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("Schema applied", nil)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Imports outlive their requests but not the process.
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	store := repository.NewPostgresStore(db)
	linkageService := services.NewLinkageService(store, log)

	dispatcher := jobs.NewDispatcher(linkageService, log)
	dispatcher.Start(jobsCtx)
	defer dispatcher.Stop()

	importLimiter := middleware.NewIPRateLimiter(cfg.Import.RatePerMinute, cfg.Import.RateBurst)

	scheduler := jobs.NewScheduler(log)
	if cfg.Linkage.Enabled() {
		if err := scheduler.Add("linkage_sweep", cfg.Linkage.Cron, dispatcher.Trigger); err != nil {
			return err
		}
	}
	if err := scheduler.Add("rate_limit_prune", limiterPruneSpec, func() {
		if removed := importLimiter.Prune(time.Now()); removed > 0 {
			log.Debug("Pruned idle rate limit buckets", map[string]interface{}{
				"removed": removed,
				"tracked": importLimiter.Len(),
			})
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	tracker := jobs.NewRedisTracker(rdb, cfg.Import.ErrorLimit)
	importService := services.NewImportService(jobsCtx, tracker, store, dispatcher, cfg.Import, log)

	router := newRouter(cfg, log, routes{
		health: handlers.NewHealthHandler(db, handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}), cfg.Server.Env),
		imports:       handlers.NewImportHandler(importService, cfg.Import.MaxUploadBytes()),
		importLimiter: importLimiter,
		linkage:       handlers.NewLinkageHandler(linkageService),
		properties:    handlers.NewPropertyHandler(services.NewPropertyService(store, log)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	// Interrupted imports are recorded as critical failures before the
	// deferred scheduler and dispatcher stops run.
	stopJobs()
	importService.Wait()
	return nil
}

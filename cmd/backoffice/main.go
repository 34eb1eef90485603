package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finoracle/backoffice/cmd/backoffice/cli"
	"github.com/finoracle/backoffice/internal/app"
	"github.com/finoracle/backoffice/internal/listview"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/observability"
	"github.com/finoracle/backoffice/internal/platform/cache"
	"github.com/finoracle/backoffice/internal/shared"
	"github.com/finoracle/backoffice/internal/ui"
	"github.com/finoracle/backoffice/internal/view"
	"github.com/finoracle/backoffice/jobs"
	"github.com/finoracle/backoffice/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(redisOpts.Asynq())
		defer func() {
			if err := jobsCLI.Close(); err != nil {
				logger.Warn("jobs cli close", slog.Any("error", err))
			}
		}()
		if err := jobsCLI.Run(ctx, os.Args[2:], os.Stdout); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "backoffice_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	gw := app.NewGateway(cfg, logger, metrics)
	loader := app.NewRefdataLoader(cfg, redisClient, gw, logger, metrics)
	reportClient := report.NewClient(cfg.GotenbergURL)

	modules := app.NewModules(gw, masters.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Lists:     listview.NewStore(listview.NewRedisSequencer(redisClient, cfg.SessionTTL)),
		Refdata:   loader,
		Guard:     shared.NewSubmitGuard(redisClient, cfg.SubmitGuardTTL),
		Stale:     metrics,
		PDF:       reportClient,
	})

	inspector := asynq.NewInspector(redisOpts.Asynq())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Modules:        modules,
		UIHandler:      ui.NewHandler(logger),
		ReportHandler:  report.NewHandler(reportClient, logger),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", gw.BaseURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

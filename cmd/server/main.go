package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/config"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/archive"
	"github.com/rahim112008/ovinmanager/internal/repository/settings"
	"github.com/rahim112008/ovinmanager/internal/repository/sheets"
	"github.com/rahim112008/ovinmanager/internal/scheduler"
	"github.com/rahim112008/ovinmanager/internal/server/handlers"
	"github.com/rahim112008/ovinmanager/internal/server/router"
	authsvc "github.com/rahim112008/ovinmanager/internal/service/auth"
	backupsvc "github.com/rahim112008/ovinmanager/internal/service/backup"
	flocksvc "github.com/rahim112008/ovinmanager/internal/service/flock"
	husbandrysvc "github.com/rahim112008/ovinmanager/internal/service/husbandry"
	nutritionsvc "github.com/rahim112008/ovinmanager/internal/service/nutrition"
	reportingsvc "github.com/rahim112008/ovinmanager/internal/service/reporting"
	"github.com/rahim112008/ovinmanager/internal/service/session"
	whatsappsvc "github.com/rahim112008/ovinmanager/internal/service/whatsapp"
	"github.com/rahim112008/ovinmanager/pkg/clients/anthropic"
	whatsappclient "github.com/rahim112008/ovinmanager/pkg/clients/whatsapp"
	"github.com/rahim112008/ovinmanager/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx := context.Background()

	st, err := repository.OpenStore(ctx, cfg.Storage, cfg.MongoDB, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()
	repos := repository.NewSet(st)

	settingsStore, err := settings.Open(ctx, cfg.Settings, baseLogger.Named("settings"))
	if err != nil {
		baseLogger.Fatal("failed to open settings", zap.Error(err))
	}
	if closer, ok := settingsStore.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	sessions := session.NewManager(settingsStore, repos, baseLogger.Named("session"))
	if err := sessions.Restore(ctx); err != nil {
		baseLogger.Fatal("failed to restore session", zap.Error(err))
	}

	// Initialize AI Client
	var (
		analyzer flocksvc.Analyzer
		advisor  nutritionsvc.Advisor
	)
	if cfg.AI.Enabled() {
		aiClient := anthropic.NewClient(cfg.AI)
		analyzer, advisor = aiClient, aiClient
		baseLogger.Info("anthropic ai client enabled", zap.String("model", cfg.AI.Model))
	} else {
		baseLogger.Warn("anthropic api key missing, image analysis and ration advice disabled")
	}

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
	} else {
		baseLogger.Warn("whatsapp credentials missing, messaging disabled")
	}
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(whatsClient, baseLogger.Named("svc.whatsapp"))

	var reportingSvc *reportingsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.Open(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingSvc = reportingsvc.NewService(repos, sheetsRepo, baseLogger.Named("svc.reporting"))
	} else {
		baseLogger.Warn("google sheets not configured, reports are not published")
		reportingSvc = reportingsvc.NewService(repos, nil, baseLogger.Named("svc.reporting"))
	}

	sink, err := archive.FromConfig(ctx, cfg.Backup, baseLogger.Named("archive"))
	if err != nil {
		baseLogger.Fatal("failed to init backup archive", zap.Error(err))
	}

	backupSvc := backupsvc.NewService(repos, baseLogger.Named("svc.backup"))

	handler := handlers.NewHandler(handlers.Services{
		Auth:      authsvc.NewService(repos.Users, baseLogger.Named("svc.auth")),
		Session:   sessions,
		Flock:     flocksvc.NewService(repos, analyzer, baseLogger.Named("svc.flock")),
		Husbandry: husbandrysvc.NewService(repos, baseLogger.Named("svc.husbandry")),
		Nutrition: nutritionsvc.NewService(repos, advisor, baseLogger.Named("svc.nutrition")),
		Reporting: reportingSvc,
		Backup:    backupSvc,
		Messaging: messagingSvc,
	}, baseLogger.Named("handlers"))
	engine := router.New(handler, baseLogger.Named("router"))

	// Initialize Scheduler
	var messenger scheduler.Messenger
	if messagingSvc.Enabled() {
		messenger = messagingSvc
	}
	sched, err := scheduler.NewScheduler(*cfg, backupSvc, sink, reportingSvc, messenger, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

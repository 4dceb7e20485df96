package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkovalev/autoinstapost/app/api"
	"github.com/dkovalev/autoinstapost/app/caption"
	"github.com/dkovalev/autoinstapost/app/cfg"
	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
	"github.com/dkovalev/autoinstapost/app/instagram"
	"github.com/dkovalev/autoinstapost/app/post"
	"github.com/dkovalev/autoinstapost/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting AutoInstaPost server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	scheduleRepo := database.NewScheduleRepository(db)
	dedupRepo := database.NewDedupRepository(db)
	pendingRepo := database.NewPendingRepository(db)
	historyRepo := database.NewHistoryRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	driveClient := drive.NewClient(appCfg.DriveBaseUrl, appCfg.DriveAccessToken, appCfg.UserAgent, httpClient)
	captionClient := caption.NewClient(appCfg.AnthropicBaseUrl, appCfg.AnthropicAPIKey, appCfg.CaptionModel,
		appCfg.UserAgent, driveClient, &http.Client{Timeout: 60 * time.Second})
	instagramClient := instagram.NewClient(appCfg.GraphBaseUrl, appCfg.InstagramAccountID,
		appCfg.InstagramAccessToken, appCfg.PublicBaseUrl, appCfg.UserAgent, &http.Client{Timeout: 120 * time.Second})

	publisher := post.NewPublisher(dedupRepo, historyRepo, instagramClient)
	approval := post.NewApprovalService(pendingRepo, publisher)
	status := post.NewStatusService(scheduleRepo, dedupRepo, pendingRepo, driveClient, instagramClient, appCfg.Location())

	scheduler := tasks.NewScheduler(scheduleRepo, dedupRepo, pendingRepo, driveClient, captionClient, publisher, approval)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "interval", fmt.Sprintf("%ds", appCfg.SchedulerInterval))

	handler := api.NewHandler(scheduleRepo, dedupRepo, historyRepo, driveClient, publisher, approval, status, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CharfiNour/enstarobots-server/config"
	"github.com/CharfiNour/enstarobots-server/db"
	"github.com/CharfiNour/enstarobots-server/draw"
	"github.com/CharfiNour/enstarobots-server/handlers"
	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/CharfiNour/enstarobots-server/realtime"
	"github.com/CharfiNour/enstarobots-server/repositories"
	api "github.com/CharfiNour/enstarobots-server/routes"
	"github.com/CharfiNour/enstarobots-server/services"
	"github.com/CharfiNour/enstarobots-server/snapshot"
	"github.com/CharfiNour/enstarobots-server/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

// syncInterval drives the periodic live-session refresh and state mirror.
const syncInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Remote state mirror (Cloudflare R2); optional.
	var mirror services.StateMirror
	if cfg.MirrorEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		mirror = storage.NewStateMirror(uploader)
		logger.Info("remote state mirror enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("remote state mirror disabled: R2 not configured")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()

	// Repositories, wrapped in short-TTL read caches; writes invalidate.
	scoreRepo := repositories.NewCachedScoreRepository(repositories.NewPostgresScoreRepository(dbConn))
	liveRepo := repositories.NewCachedLiveSessionRepository(repositories.NewPostgresLiveSessionRepository(dbConn))
	teamRepo := repositories.NewCachedTeamRepository(repositories.NewPostgresTeamRepository(dbConn))
	categoryRepo := repositories.NewCachedCategoryRepository(repositories.NewPostgresCategoryRepository(dbConn))

	snapshotStore := snapshot.NewStore(cfg.SnapshotPath)
	// Every persisted state change fans out so admin consoles and spectator
	// screens re-render without polling.
	snapshotStore.Subscribe(func(*models.CompetitionState) {
		hub.BroadcastAll(realtime.Message{Type: realtime.MessageStateUpdated})
	})
	stateService, err := services.NewStateService(snapshotStore, mirror, logger)
	if err != nil {
		logger.Error("failed to hydrate competition state", slog.Any("error", err))
		os.Exit(1)
	}

	aggregationService := services.NewAggregationService(logger)
	phaseService := services.NewPhaseService()
	competitionService := services.NewCompetitionService(
		scoreRepo, teamRepo, categoryRepo, aggregationService, phaseService, hub, logger,
	)
	drawService := services.NewDrawService(
		scoreRepo, teamRepo, competitionService, draw.NewPlanner(), hub, logger,
	)
	liveService := services.NewLiveService(stateService, liveRepo, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go liveService.Run(ctx)

	// Periodic sync: reconcile live sessions against the remote store and
	// mirror the state snapshot off the box.
	go func() {
		ticker := time.NewTicker(syncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := liveService.Refresh(ctx); err != nil {
					logger.Warn("live session refresh failed", slog.Any("error", err))
				}
				if err := stateService.MirrorRemote(ctx); err != nil {
					logger.Warn("state mirror failed", slog.Any("error", err))
				}
			}
		}
	}()

	scoreHandler := handlers.NewScoreHandler(competitionService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	liveHandler := handlers.NewLiveHandler(liveService, competitionService)
	drawHandler := handlers.NewDrawHandler(drawService)
	stateHandler := handlers.NewStateHandler(stateService, competitionService)
	teamHandler := handlers.NewTeamHandler(teamRepo)
	webSocketHandler := handlers.NewWebSocketHandler(hub, competitionService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Config{JWTSecretKey: cfg.JWTSecretKey, JuryCodeHash: cfg.JuryCodeHash},
		scoreHandler,
		competitionHandler,
		liveHandler,
		drawHandler,
		stateHandler,
		teamHandler,
		webSocketHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
	}

	// Last mirror of the state snapshot on the way out.
	if err := stateService.MirrorRemote(shutdownCtx); err != nil {
		logger.Warn("final state mirror failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

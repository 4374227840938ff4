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

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/config"
	"github.com/Dosada05/tournament-engine/db"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/repositories"
	api "github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/Dosada05/tournament-engine/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("db_driver", cfg.DBDriver))

	dbConn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.Migrate(startupCtx, dbConn); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	dialect := repositories.Dialect(cfg.DBDriver)
	kvStore := repositories.NewSQLKeyValueStore(dbConn, dialect)
	teamRepo := repositories.NewSQLTeamRepository(dbConn, dialect)
	fieldRepo := repositories.NewSQLFieldRepository(dbConn, dialect)

	catalog, err := services.LoadCatalog(startupCtx, teamRepo, fieldRepo)
	if err != nil {
		logger.Error("failed to load team catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("team catalog loaded", slog.Int("teams", len(catalog.Teams())))

	presets, err := config.LoadPresets(cfg.SettingsFile)
	if err != nil {
		logger.Error("failed to load tournament presets", slog.Any("error", err))
		os.Exit(1)
	}

	var archive services.ArchiveService
	r2 := storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2.Enabled() {
		store, err := storage.NewR2Store(startupCtx, r2, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		archive = services.NewArchiveService(store, logger)
		logger.Info("tournament archiving enabled", slog.String("bucket", r2.BucketName))
	} else {
		logger.Info("R2 is not configured, finished tournaments will not be archived")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	controller := services.NewTournamentController(presets, catalog, catalog, kvStore, logger)
	tournamentService := services.NewTournamentService(controller, presets, wsHub, archive, logger)
	restored, err := tournamentService.Restore(startupCtx)
	if err != nil {
		logger.Error("failed to restore tournament", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("tournament state checked", slog.Bool("restored", restored))

	authService := services.NewAuthService(cfg.ExecutorID, cfg.ExecutorSecretHash)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	settingsHandler := handlers.NewSettingsHandler(tournamentService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.CORSAllowedOrigins},
		authHandler,
		settingsHandler,
		tournamentHandler,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	tournamentService.WaitForArchives()
	wsHub.Stop()
	logger.Info("application exited")
}

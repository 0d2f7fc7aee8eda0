package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/config"
	"github.com/arenaforge/tournament-engine/db"
	"github.com/arenaforge/tournament-engine/handlers"
	"github.com/arenaforge/tournament-engine/ledger"
	"github.com/arenaforge/tournament-engine/repositories"
	api "github.com/arenaforge/tournament-engine/routes"
	"github.com/arenaforge/tournament-engine/services"
	"github.com/arenaforge/tournament-engine/storage"
	"github.com/go-chi/chi/v5"
)

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
	logger.Info("R2 uploader initialized")

	wsHub := brackets.NewHub()
	go wsHub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	payoutRepo := repositories.NewPostgresPayoutRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	disputeRepo := repositories.NewPostgresDisputeRepository(dbConn)

	walletLedger := ledger.NewPostgresLedger()
	shuffler := rand.New(rand.NewSource(time.Now().UnixNano()))

	tournamentService := services.NewTournamentService(tournamentRepo, matchRepo, payoutRepo)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, registrationRepo, matchRepo, shuffler, wsHub, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, tournamentRepo, disputeRepo, uploader, wsHub, logger)
	settlementService := services.NewSettlementService(
		dbConn,
		tournamentRepo,
		matchRepo,
		payoutRepo,
		teamRepo,
		walletLedger,
		cfg.CaptainBonusPercent,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService, settlementService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(router, []byte(cfg.JWTSecretKey), tournamentHandler, matchHandler, webSocketHandler)
	logger.Info("routes configured")

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
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("application exited")
}

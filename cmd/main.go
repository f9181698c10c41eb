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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/config"
	"github.com/Dosada05/knockout-arena/db"
	"github.com/Dosada05/knockout-arena/handlers"
	"github.com/Dosada05/knockout-arena/repositories"
	api "github.com/Dosada05/knockout-arena/routes"
	"github.com/Dosada05/knockout-arena/services"
	"github.com/Dosada05/knockout-arena/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных (опционально: без DATABASE_URL арена
	// живёт только в памяти).
	var snapshotRepo repositories.SnapshotRepository
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

		repo := repositories.NewPostgresSnapshotRepository(dbConn)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Error("failed to ensure snapshot schema", slog.Any("error", err))
			os.Exit(1)
		}
		snapshotRepo = repo
		logger.Info("database connection established")
	} else {
		logger.Warn("DATABASE_URL is not set, snapshots will not be persisted")
	}

	// Инициализация архива снапшотов (Cloudflare R2), тоже опционально.
	var archive storage.FileUploader
	if cfg.R2Configured() {
		archive, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 snapshot archive initialized")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Состояние арены
	store, err := services.NewStore(brackets.DefaultSeed(), cfg.MaxWager, cfg.StartingBalance, cfg.AdminUsername)
	if err != nil {
		logger.Error("failed to initialize arena state", slog.Any("error", err))
		os.Exit(1)
	}
	if snapshotRepo != nil {
		snap, err := snapshotRepo.Load(context.Background())
		switch {
		case err == nil:
			if err := store.RestoreSnapshot(snap); err != nil {
				logger.Error("failed to restore persisted snapshot", slog.Any("error", err))
				os.Exit(1)
			}
			logger.Info("arena state restored from snapshot", slog.Time("saved_at", snap.SavedAt))
		case errors.Is(err, repositories.ErrSnapshotNotFound):
			logger.Info("no persisted snapshot, starting fresh")
		default:
			logger.Error("failed to load persisted snapshot", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Инициализация сервисов
	authService := services.NewAuthService(store, snapshotRepo, archive, wsHub, logger, cfg.AdminUsername, cfg.AdminPassword)
	tournamentService := services.NewTournamentService(store, snapshotRepo, archive, wsHub, logger)
	wagerService := services.NewWagerService(store, snapshotRepo, archive, wsHub, logger)
	chatService := services.NewChatService(store, snapshotRepo, archive, wsHub, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	jwtSecret := []byte(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, jwtSecret)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	wagerHandler := handlers.NewWagerHandler(wagerService)
	chatHandler := handlers.NewChatHandler(chatService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, wagerService, chatService, jwtSecret, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		jwtSecret,
		authHandler,
		tournamentHandler,
		wagerHandler,
		chatHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	// Финальный снапшот: мутации и так сохраняются по одной, но на выходе
	// фиксируем текущее состояние ещё раз.
	if snapshotRepo != nil {
		store.Lock()
		snap := store.Snapshot()
		store.Unlock()
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFlush()
		if err := snapshotRepo.Save(flushCtx, snap); err != nil {
			logger.Error("failed to flush final snapshot", slog.Any("error", err))
		}
	}
	logger.Info("application exited")
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/slate-notes/api/internal/adapters/handler/http"
	"github.com/slate-notes/api/internal/adapters/repository/postgres"
	"github.com/slate-notes/api/internal/adapters/storage/local"
	"github.com/slate-notes/api/internal/core/services"
	"github.com/slate-notes/api/pkg/config"
)

func main() {
	godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		logger.Fatal().Msg("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach database")
	}

	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)
	noteRepo := postgres.NewNoteRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	folderRepo := postgres.NewFolderRepository(db)
	tagRepo := postgres.NewTagRepository(db)

	fileStorage, err := local.New(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init upload storage")
	}

	authService := services.NewAuthService(userRepo, authRepo, services.AuthConfig{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	}, logger)
	userService := services.NewUserService(userRepo)
	noteService := services.NewNoteService(noteRepo, tagRepo)
	taskService := services.NewTaskService(taskRepo, noteRepo)
	folderService := services.NewFolderService(folderRepo)
	tagService := services.NewTagService(tagRepo)
	uploadService := services.NewUploadService(fileStorage)

	handler := http.NewHandler(http.Handlers{
		Auth:   http.NewAuthHandler(authService, userService),
		Note:   http.NewNoteHandler(noteService),
		Task:   http.NewTaskHandler(taskService),
		Folder: http.NewFolderHandler(folderService),
		Tag:    http.NewTagHandler(tagService),
		Upload: http.NewUploadHandler(uploadService),
	}, authService, cfg.Upload.Dir, cfg.Server.AllowedOrigins)

	server := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port),
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown error")
	}
}

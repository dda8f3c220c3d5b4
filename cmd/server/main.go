package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/pkg/config"
	"wiki-character-chat/backend/pkg/di"
	"wiki-character-chat/backend/pkg/logger"
	"wiki-character-chat/backend/pkg/router"
)

func main() {
	cfg := config.Load()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	log := logger.New(logConfig)

	log.Info("starting application", "env", cfg.Server.Env)

	db, err := config.NewDB(cfg)
	if err != nil {
		log.LogError(err, "failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Character{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.InviteKey{},
	); err != nil {
		log.LogError(err, "failed to migrate database")
		os.Exit(1)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_session_created ON chat_messages(session_id, created_at)").Error; err != nil {
		log.LogError(err, "failed to create message index", "index", "idx_messages_session_created")
	}

	ctx := context.Background()
	container, err := di.New(ctx, cfg, db, log)
	if err != nil {
		log.LogError(err, "failed to initialize dependency container")
		os.Exit(1)
	}

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "server forced to shutdown")
	}
	if err := container.Close(shutdownCtx); err != nil {
		log.LogError(err, "failed to close container resources")
	}

	log.Info("server exited")
}

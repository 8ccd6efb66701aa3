package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fartlog/fartlog-be/internal/api"
	"github.com/fartlog/fartlog-be/internal/auth"
	"github.com/fartlog/fartlog-be/internal/config"
	"github.com/fartlog/fartlog-be/internal/database"
	"github.com/fartlog/fartlog-be/internal/logger"
	"github.com/fartlog/fartlog-be/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Ensure the directory holding the SQLite file exists
	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Msg("Failed to create database directory")
		}
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	if err := database.SeedPresetTypes(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed preset fart types")
	}

	// Set up services
	userService := services.NewUserService(db)
	typeService := services.NewFartTypeService(db)
	recordService := services.NewRecordService(db)
	analyticsService := services.NewAnalyticsService(db)
	exportService := services.NewExportService(db)

	tokens := auth.NewManager(cfg.JWTSecret, userService.GetByID)

	router := api.NewRouter(api.Deps{
		Tokens:         tokens,
		UserService:    userService,
		TypeService:    typeService,
		RecordService:  recordService,
		Analytics:      analyticsService,
		ExportService:  exportService,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

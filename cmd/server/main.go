package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"meetingRoomBooking/internal/booking"
	"meetingRoomBooking/internal/config"
	"meetingRoomBooking/internal/db"
	"meetingRoomBooking/internal/httpapi"
	"meetingRoomBooking/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Env)
	logger.Info("configuration loaded", "config", cfg.String())

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close db", "error", err)
		}
	}()

	if err := db.EnsureInitialAdmin(ctx, d, cfg.Admin.StudentID, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		logger.Error("failed to ensure bootstrap admin", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(d)
	bookings := repository.NewCachedBookingRepository(repository.NewBookingRepository(d), cfg.CacheTTL)
	scheduler := booking.NewService(bookings, booking.RealClock{}, logger)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Config:    cfg,
		Users:     users,
		Bookings:  bookings,
		Scheduler: scheduler,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Address, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrors:
		logger.Error("http server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("http server stopped")
}

func loadConfig() (*config.Config, error) {
	if os.Getenv("ENV") == "prod" {
		return config.Load()
	}
	return config.LoadWithDefaults()
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env != "prod" {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

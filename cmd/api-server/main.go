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

	"github.com/gin-gonic/gin"

	"studyverse/database"
	"studyverse/internal/cache"
	"studyverse/internal/config"
	"studyverse/internal/handler"
	"studyverse/internal/identity"
	"studyverse/internal/middleware"
	"studyverse/internal/notify"
	"studyverse/internal/repository"
	"studyverse/internal/service"
	"studyverse/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	if err := database.Seed(db, logger); err != nil {
		return err
	}

	progressCache, err := cache.NewProgressCache(cfg.RedisAddr, cfg.RedisPassword, cfg.ProgressCacheTTL)
	if err != nil {
		return err
	}
	defer progressCache.Close()

	blobs, err := storage.NewLocalStore(cfg.StoragePath)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Expired refresh tokens accumulate across restarts; sweep them now.
	if err := refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		logger.Warn("failed to sweep expired refresh tokens", slog.String("error", err.Error()))
	}

	// Identity provider: Google when fully configured, local otherwise.
	var provider identity.Provider
	var google *identity.GoogleProvider
	if cfg.GoogleEnabled() {
		google = identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		provider = google
		logger.Info("using google identity provider")
	} else {
		provider = identity.NewLocalProvider()
		logger.Info("using local identity provider")
	}

	// Services
	sessions := service.NewSessionService(provider, userRepo, logger)
	defer sessions.Close()
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	bookService := service.NewBookService(bookRepo, blobs, logger)
	progressService := service.NewProgressService(userRepo, bookRepo, progressCache, logger)
	notifications := notify.NewStore()

	// Handlers
	authHandler := handler.NewAuthHandler(sessions, authService, google, cfg.AccessTokenTTL)
	bookHandler := handler.NewBookHandler(bookService, userRepo, cfg.UploadMaxBytes)
	profileHandler := handler.NewProfileHandler(userRepo, progressService)
	notificationHandler := handler.NewNotificationHandler(notifications)
	adminHandler := handler.NewAdminHandler(authService, bookService, userRepo, notifications, cfg.AccessTokenTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/revoke", authHandler.RevokeToken)
			auth.GET("/session", authHandler.Session)
			auth.GET("/google/url", authHandler.GoogleAuthURL)
			auth.POST("/logout", middleware.AuthMiddleware(authService), authHandler.Logout)
		}

		books := api.Group("/books")
		{
			books.GET("/categories", bookHandler.Categories)

			authed := books.Group("", middleware.AuthMiddleware(authService))
			authed.GET("", bookHandler.List)
			authed.GET("/:id", bookHandler.GetByID)

			uploadLimiter := middleware.NewUploadLimiter(cfg.UploadRatePerMinute, cfg.UploadRateBurst)
			authed.POST("", uploadLimiter.Middleware(), bookHandler.Upload)
		}

		profile := api.Group("/profile", middleware.AuthMiddleware(authService))
		{
			profile.GET("", profileHandler.Get)
			profile.PUT("", profileHandler.Update)
			profile.GET("/rewards", profileHandler.Rewards)
			profile.GET("/reading-history", profileHandler.ReadingHistory)
			profile.GET("/current-book", profileHandler.CurrentBook)
			profile.PUT("/current-book", profileHandler.SetCurrentBook)
			profile.POST("/finished-books", profileHandler.FinishBook)
		}

		notificationsGroup := api.Group("/notifications", middleware.AuthMiddleware(authService))
		{
			notificationsGroup.GET("", notificationHandler.List)
			notificationsGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationsGroup.POST("/:id/read", notificationHandler.MarkAsRead)
			notificationsGroup.DELETE("", notificationHandler.ClearAll)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("", middleware.AuthMiddleware(authService), middleware.RequireAdmin())
			protected.GET("/students", adminHandler.ListStudents)
			protected.GET("/books", adminHandler.ListBooks)
			protected.POST("/books/:id/approve", adminHandler.ApproveBook)
			protected.POST("/books/:id/reject", adminHandler.RejectBook)
			protected.POST("/notifications", adminHandler.SendNotification)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

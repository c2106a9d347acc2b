package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"linkpulse/auth"
	"linkpulse/config"
	"linkpulse/database"
	"linkpulse/geoip"
	"linkpulse/handlers"
	"linkpulse/mailer"
	"linkpulse/middleware"
	"linkpulse/services"
	"linkpulse/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		startupLog := zerolog.New(os.Stderr)
		startupLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := newLogger(cfg)

	db, err := database.Connect(cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("database setup failed")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("redis not reachable at startup; OTP and rate limiting degraded")
	}

	uploads, err := newUploader(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage setup failed")
	}

	mail := newMailer(cfg, log)

	linkService := services.NewLinkService(db)
	clickService := services.NewClickService(db)
	userService := services.NewUserService(db)
	otpService := services.NewOTPService(rdb, cfg.OTPTTL)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	geo := geoip.NewResolver(cfg.GeoAPIBaseURL, cfg.GeoTimeout, log)

	redirectHandler := handlers.NewRedirectHandler(linkService, clickService, geo, log)
	linkHandler := handlers.NewLinkHandler(linkService, clickService, uploads, cfg.BaseURL, log)
	authHandler := handlers.NewAuthHandler(userService, otpService, tokens, mail, log)
	userHandler := handlers.NewUserHandler(userService, uploads, log)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if _, ok := uploads.(*storage.LocalStorage); ok {
		router.Static("/uploads", "./uploads")
	}

	router.GET("/:code", redirectHandler.Redirect)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(rdb, cfg.RateLimit, cfg.RateLimitWindow, log))
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/verify", authHandler.Verify)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/forgot-password", authHandler.ForgotPassword)
		api.POST("/auth/reset-password", authHandler.ResetPassword)

		api.GET("/lookup/:code", redirectHandler.Lookup)

		authed := api.Group("")
		authed.Use(tokens.Middleware())
		{
			authed.POST("/urls", linkHandler.Create)
			authed.GET("/urls", linkHandler.List)
			authed.GET("/urls/:id", linkHandler.Get)
			authed.DELETE("/urls/:id", linkHandler.Delete)
			authed.GET("/urls/:id/analytics", linkHandler.Analytics)

			authed.GET("/users/me", userHandler.Me)
			authed.PUT("/users/me", userHandler.Update)
			authed.POST("/users/me/avatar", userHandler.UploadAvatar)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("linkpulse starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newUploader(cfg *config.Config, log zerolog.Logger) (storage.Uploader, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			BaseURL:   cfg.S3BaseURL,
		})
	}
	log.Info().Msg("no S3 bucket configured, storing uploads on local disk")
	return storage.NewLocalStorage("./uploads", cfg.BaseURL+"/uploads")
}

func newMailer(cfg *config.Config, log zerolog.Logger) mailer.EmailSender {
	if cfg.PostmarkServerToken != "" && cfg.PostmarkAccountToken != "" {
		sender, err := mailer.NewPostmarkSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
		if err == nil {
			return sender
		}
		log.Warn().Err(err).Msg("postmark setup failed, falling back to dev mailer")
	}
	return mailer.NewDevSender(log)
}

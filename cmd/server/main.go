// @title           Onboarding API
// @version         1.0
// @description     Authentication, profile and onboarding backend for the merchant dashboard.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/onboarding-api/internal/api"
	"github.com/99minutos/onboarding-api/internal/api/handler"
	"github.com/99minutos/onboarding-api/internal/core/service"
	"github.com/99minutos/onboarding-api/internal/infrastructure/config"
	mongodb "github.com/99minutos/onboarding-api/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/onboarding-api/internal/infrastructure/db/redis"
	"github.com/99minutos/onboarding-api/internal/infrastructure/mail"
	"github.com/99minutos/onboarding-api/internal/infrastructure/queue"
	"github.com/99minutos/onboarding-api/internal/infrastructure/storage"
	"github.com/99minutos/onboarding-api/pkg/logger"
)

const (
	serviceName     = "onboarding-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// A missing .env file is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Pretty: true}).Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Datastores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// --- Mail ---
	transport, err := mailTransport(cfg, log)
	if err != nil {
		return err
	}
	renderer, err := mail.NewRenderer(cfg.Mail.TemplateDir)
	if err != nil {
		return err
	}
	mailer := mail.NewMailer(renderer, transport, logger.Component("mail"))

	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, mailer, logger.Component("mail-queue"))
	dispatcher.Start(context.WithoutCancel(ctx))

	// --- Photo storage ---
	photos, err := storage.New(ctx, storage.Config{
		Type:         storage.Type(cfg.Storage.Type),
		PublicURL:    cfg.Storage.PublicURL,
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.S3Bucket,
		S3Region:     cfg.Storage.S3Region,
		S3Endpoint:   cfg.Storage.S3Endpoint,
		AWSAccessKey: cfg.Storage.AWSAccessKey,
		AWSSecretKey: cfg.Storage.AWSSecretKey,
	})
	if err != nil {
		return err
	}
	log.Info().Str("type", cfg.Storage.Type).Msg("photo storage ready")

	// --- Services ---
	tokens := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
	authService := service.NewAuthService(
		userRepo,
		tokens,
		redisdb.NewSessionRevoker(rdb),
		mailer,
		dispatcher,
		service.AuthConfig{SendVerificationEmail: !cfg.IsTest()},
		logger.Component("auth"),
	)
	userService := service.NewUserService(userRepo, photos, logger.Component("users"))

	e := api.NewRouter(authService, userService, logger.Component("http"), api.Options{
		Debug: cfg.IsDevelopment(),
		Cookies: handler.CookieConfig{
			TTL:    cfg.CookieTTL(),
			Secure: cfg.IsProduction(),
		},
		PublicURL:   cfg.PublicURL,
		CORSOrigins: cfg.CORSOrigins,
		Readiness: map[string]handler.ReadinessCheck{
			"mongo": mongodb.Ping(mongoClient),
			"redis": redisdb.Ping(rdb),
		},
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	// --- Graceful shutdown ---
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mail dispatcher did not drain")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}

	log.Info().Msg("server stopped")
	return nil
}

// mailTransport delivers over SMTP when a relay is configured and only logs
// messages otherwise.
func mailTransport(cfg *config.Config, log zerolog.Logger) (mail.Transport, error) {
	if cfg.Mail.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, emails will only be logged")
		return mail.NewLogTransport(log), nil
	}
	return mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		Secure:   cfg.Mail.SMTPSecure,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
}

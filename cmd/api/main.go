package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookswap-api/internal/application/notification"
	"github.com/bookswap-api/internal/config"
	"github.com/bookswap-api/internal/infrastructure/catalog"
	"github.com/bookswap-api/internal/infrastructure/dynamo"
	"github.com/bookswap-api/internal/infrastructure/google"
	jwtinfra "github.com/bookswap-api/internal/infrastructure/jwt"
	"github.com/bookswap-api/internal/infrastructure/mailapi"
	s3infra "github.com/bookswap-api/internal/infrastructure/s3"
	"github.com/bookswap-api/internal/infrastructure/smtp"
	"github.com/bookswap-api/internal/infrastructure/sns"
	transporthttp "github.com/bookswap-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional, graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	// S3 store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer for OTP and email-confirmation messages.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional, graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		slog.Warn("SNS sender not available", "err", err)
	}

	// Google ID-token verifier, only when a client ID is configured.
	var googleAuth *google.Verifier
	if cfg.GoogleClientID != "" {
		googleAuth = google.NewVerifier(cfg.GoogleClientID)
	}

	mailClient := mailapi.NewClient(cfg.MailAPIBaseURL, &http.Client{Timeout: cfg.MailAPITimeout})
	catalogClient := catalog.NewClient(cfg.CatalogAPIBaseURL, &http.Client{Timeout: cfg.CatalogAPITimeout})

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	preferenceRepo := dynamo.NewPreferenceRepo(dynamoClient, cfg.DynamoTables.Preferences)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)

	dispatcher := notification.NewDispatcher(preferenceRepo, userRepo, notificationRepo, mailClient, smsSender, notification.DispatcherConfig{
		MaxAttempts: cfg.NotifyMaxAttempts,
		BaseDelay:   cfg.NotifyBaseDelay,
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
	})
	dispatcher.Start()
	defer dispatcher.Stop()

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		OwnedBookRepo:    dynamo.NewOwnedBookRepo(dynamoClient, cfg.DynamoTables.OwnedBooks),
		WantedBookRepo:   dynamo.NewWantedBookRepo(dynamoClient, cfg.DynamoTables.WantedBooks),
		ChatRepo:         dynamo.NewChatRepo(dynamoClient, cfg.DynamoTables.Chats),
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		SwapRepo:         dynamo.NewSwapRepo(dynamoClient, cfg.DynamoTables.Swaps),
		NotificationRepo: notificationRepo,
		PreferenceRepo:   preferenceRepo,
		NeighborhoodRepo: dynamo.NewNeighborhoodRepo(dynamoClient, cfg.DynamoTables.Neighborhoods),
		FileRepo:         dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications),
		Cascade:          dynamo.NewCascadeWriter(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.OwnedBooks, cfg.DynamoTables.WantedBooks),
		S3Store:          s3Store,
		Mailer:           mailer,
		MailClient:       mailClient,
		CatalogClient:    catalogClient,
		JWTProvider:      jwtProvider,
		Dispatcher:       dispatcher,
		GoogleAuth:       googleAuth,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}

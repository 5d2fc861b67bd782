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

	"github.com/joho/godotenv"

	"github.com/go-api-pool/internal/config"
	"github.com/go-api-pool/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-pool/internal/infrastructure/jwt"
	s3infra "github.com/go-api-pool/internal/infrastructure/s3"
	"github.com/go-api-pool/internal/infrastructure/smtp"
	"github.com/go-api-pool/internal/infrastructure/sns"
	transporthttp "github.com/go-api-pool/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Create DynamoDB tables that don't exist yet.
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider init failed", "error", err)
		os.Exit(1)
	}

	snsSender, err := sns.NewSender(cfg)
	if err != nil {
		slog.Error("sns sender init failed", "error", err)
		os.Exit(1)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		StatusRepo:       dynamo.NewStatusRepo(dynamoClient, cfg.DynamoTables.Statuses),
		DeviceRepo:       dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		FileRepo:         dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		AppVersionRepo:   dynamo.NewAppVersionRepo(dynamoClient, cfg.DynamoTables.AppVersions),
		RoleRepo:         dynamo.NewRoleRepo(dynamoClient, cfg.DynamoTables.Roles),
		NewsRepo:         dynamo.NewNewsRepo(dynamoClient, cfg.DynamoTables.News),

		EmailPoolRepo:     dynamo.NewEmailPoolRepo(dynamoClient, cfg.DynamoTables.EmailPool),
		SMSPoolRepo:       dynamo.NewSMSPoolRepo(dynamoClient, cfg.DynamoTables.SMSPool),
		PushPoolRepo:      dynamo.NewPushPoolRepo(dynamoClient, cfg.DynamoTables.PushPool),
		EmailSentRepo:     dynamo.NewEmailSentRepo(dynamoClient, cfg.DynamoTables.EmailSent),
		SMSSentRepo:       dynamo.NewSMSSentRepo(dynamoClient, cfg.DynamoTables.SMSSent),
		PushSentRepo:      dynamo.NewPushSentRepo(dynamoClient, cfg.DynamoTables.PushSent),
		EmailTemplateRepo: dynamo.NewEmailTemplateRepo(dynamoClient, cfg.DynamoTables.EmailTemplates),
		SMSTemplateRepo:   dynamo.NewSMSTemplateRepo(dynamoClient, cfg.DynamoTables.SMSTemplates),
		PushTemplateRepo:  dynamo.NewPushTemplateRepo(dynamoClient, cfg.DynamoTables.PushTemplates),

		S3Store:     s3Store,
		Mailer:      smtp.NewMailer(cfg),
		SNSSender:   snsSender,
		JWTProvider: jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

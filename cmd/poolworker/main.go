// Command poolworker drains the notification pools once and exits. It is
// meant to run on a schedule (cron, ECS scheduled task) alongside the API,
// which only takes the send-now fast path itself.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/go-api-pool/internal/application/delivery"
	"github.com/go-api-pool/internal/config"
	"github.com/go-api-pool/internal/infrastructure/dynamo"
	"github.com/go-api-pool/internal/infrastructure/smtp"
	"github.com/go-api-pool/internal/infrastructure/sns"
)

func main() {
	channel := flag.String("channel", "all", "pool to drain: email, sms, push or all")
	limit := flag.Int("limit", 0, "max rows per pool (0 = config default)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	batch := int32(*limit)
	if batch <= 0 {
		batch = int32(cfg.PoolBatchLimit)
	}

	client := dynamo.NewClient(cfg)
	ctx := context.Background()
	failed := false

	run := func(name string, worker interface {
		Run(ctx context.Context, limit int32) (delivery.Stats, error)
	}) {
		stats, err := worker.Run(ctx, batch)
		if err != nil {
			slog.Error("pool drain failed", "channel", name, "error", err)
			failed = true
			return
		}
		slog.Info("pool drained", "channel", name,
			"sent", stats.Sent, "failed", stats.Failed,
			"skipped", stats.Skipped, "dropped", stats.Dropped)
	}

	if *channel == "email" || *channel == "all" {
		run("email", delivery.NewEmailWorker(
			dynamo.NewEmailPoolRepo(client, cfg.DynamoTables.EmailPool),
			dynamo.NewEmailSentRepo(client, cfg.DynamoTables.EmailSent),
			smtp.NewMailer(cfg),
			cfg.PoolMaxSendAttempts,
		))
	}

	if *channel == "sms" || *channel == "push" || *channel == "all" {
		sender, err := sns.NewSender(cfg)
		if err != nil {
			slog.Error("sns sender init failed", "error", err)
			os.Exit(1)
		}
		if *channel == "sms" || *channel == "all" {
			run("sms", delivery.NewSMSWorker(
				dynamo.NewSMSPoolRepo(client, cfg.DynamoTables.SMSPool),
				dynamo.NewSMSSentRepo(client, cfg.DynamoTables.SMSSent),
				sender,
				cfg.PoolMaxSendAttempts,
			))
		}
		if *channel == "push" || *channel == "all" {
			run("push", delivery.NewPushWorker(
				dynamo.NewPushPoolRepo(client, cfg.DynamoTables.PushPool),
				dynamo.NewPushSentRepo(client, cfg.DynamoTables.PushSent),
				dynamo.NewDeviceRepo(client, cfg.DynamoTables.Devices),
				dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications),
				sender,
				cfg.PoolMaxSendAttempts,
			))
		}
	}

	if failed {
		os.Exit(1)
	}
}

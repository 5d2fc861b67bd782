package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/infrastructure/sns"
	"github.com/go-api-pool/internal/pkg/id"
	"github.com/go-api-pool/internal/pkg/validate"
)

type smsPoolStore interface {
	ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.SMSPoolItem, error)
	Claim(ctx context.Context, itemID string) error
	MarkError(ctx context.Context, itemID string, attempts int) error
	Delete(ctx context.Context, itemID string) error
}

type smsSentStore interface {
	Put(ctx context.Context, sent *domain.SMSSent) error
}

type SMSWorker struct {
	pool        smsPoolStore
	sentLog     smsSentStore
	sender      sns.SMSSender
	maxAttempts int
}

func NewSMSWorker(pool smsPoolStore, sentLog smsSentStore, sender sns.SMSSender, maxAttempts int) *SMSWorker {
	return &SMSWorker{pool: pool, sentLog: sentLog, sender: sender, maxAttempts: maxAttempts}
}

func (w *SMSWorker) Run(ctx context.Context, limit int32) (Stats, error) {
	var stats Stats
	items, err := w.pool.ListDue(ctx, time.Now().UTC(), limit)
	if err != nil {
		return stats, fmt.Errorf("list due sms: %w", err)
	}
	for i := range items {
		item := &items[i]
		if err := w.pool.Claim(ctx, item.ItemID); err != nil {
			stats.Skipped++
			continue
		}
		if err := w.deliver(ctx, item); err != nil {
			w.fail(ctx, item, err, &stats)
			continue
		}
		stats.Sent++
	}
	if len(items) > 0 {
		slog.Info("sms pool cycle",
			"sent", stats.Sent, "failed", stats.Failed,
			"skipped", stats.Skipped, "dropped", stats.Dropped)
	}
	return stats, nil
}

func (w *SMSWorker) SendOne(ctx context.Context, item *domain.SMSPoolItem) error {
	if err := w.pool.Claim(ctx, item.ItemID); err != nil {
		return err
	}
	if err := w.deliver(ctx, item); err != nil {
		w.fail(ctx, item, err, &Stats{})
		return err
	}
	return nil
}

func (w *SMSWorker) deliver(ctx context.Context, item *domain.SMSPoolItem) error {
	if !validate.ValidPhone10(item.Phone) {
		return fmt.Errorf("invalid recipient phone %q", item.Phone)
	}
	if err := w.sender.SendSMS(ctx, item.Phone, item.Message); err != nil {
		return err
	}
	if err := w.sentLog.Put(ctx, &domain.SMSSent{
		SentID:     id.New(),
		UserID:     item.UserID,
		TemplateID: item.TemplateID,
		Message:    item.Message,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return err
	}
	return w.pool.Delete(ctx, item.ItemID)
}

func (w *SMSWorker) fail(ctx context.Context, item *domain.SMSPoolItem, cause error, stats *Stats) {
	attempts := item.SendAttempts + 1
	if attempts >= w.maxAttempts {
		slog.Warn("sms dropped after max attempts",
			"item_id", item.ItemID, "attempts", attempts, "err", cause)
		if err := w.pool.Delete(ctx, item.ItemID); err != nil {
			slog.Error("could not drop sms pool item", "item_id", item.ItemID, "err", err)
		}
		stats.Dropped++
		return
	}
	slog.Warn("sms delivery failed", "item_id", item.ItemID, "attempts", attempts, "err", cause)
	if err := w.pool.MarkError(ctx, item.ItemID, attempts); err != nil {
		slog.Error("could not mark sms pool item", "item_id", item.ItemID, "err", err)
	}
	stats.Failed++
}

// Package delivery drains the notification pools. Each worker runs one
// batch cycle: list due rows, claim each with a conditional status update,
// deliver, then either log the row to the sent table and remove it or push
// it back to ERROR with an incremented attempt count. Rows that reach the
// attempt limit are dropped without a sent record.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/infrastructure/smtp"
	"github.com/go-api-pool/internal/pkg/id"
	"github.com/go-api-pool/internal/pkg/validate"
)

// Stats summarizes one pool cycle.
type Stats struct {
	Sent    int
	Failed  int
	Skipped int
	Dropped int
}

type emailPoolStore interface {
	ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.EmailPoolItem, error)
	Claim(ctx context.Context, itemID string) error
	MarkError(ctx context.Context, itemID string, attempts int) error
	Delete(ctx context.Context, itemID string) error
}

type emailSentStore interface {
	Put(ctx context.Context, sent *domain.EmailSent) error
}

type EmailWorker struct {
	pool        emailPoolStore
	sentLog     emailSentStore
	mailer      smtp.Mailer
	maxAttempts int
}

func NewEmailWorker(pool emailPoolStore, sentLog emailSentStore, mailer smtp.Mailer, maxAttempts int) *EmailWorker {
	return &EmailWorker{pool: pool, sentLog: sentLog, mailer: mailer, maxAttempts: maxAttempts}
}

// Run drains one batch of due email pool rows over a single SMTP session.
// A claim conflict means another worker took the row; it is skipped, not
// counted as a failure.
func (w *EmailWorker) Run(ctx context.Context, limit int32) (Stats, error) {
	var stats Stats
	items, err := w.pool.ListDue(ctx, time.Now().UTC(), limit)
	if err != nil {
		return stats, fmt.Errorf("list due emails: %w", err)
	}
	if len(items) == 0 {
		return stats, nil
	}
	sender, err := w.mailer.Dial()
	if err != nil {
		// Rows stay due and are retried on the next cycle.
		return stats, fmt.Errorf("smtp dial: %w", err)
	}
	defer sender.Close()

	for i := range items {
		item := &items[i]
		if err := w.pool.Claim(ctx, item.ItemID); err != nil {
			stats.Skipped++
			continue
		}
		if err := w.deliver(ctx, sender, item); err != nil {
			w.fail(ctx, item, err, &stats)
			continue
		}
		stats.Sent++
	}
	slog.Info("email pool cycle",
		"sent", stats.Sent, "failed", stats.Failed,
		"skipped", stats.Skipped, "dropped", stats.Dropped)
	return stats, nil
}

// SendOne delivers a single already-persisted pool row right away. Used for
// items enqueued with send-now. Failures leave the row in ERROR for the
// next batch.
func (w *EmailWorker) SendOne(ctx context.Context, item *domain.EmailPoolItem) error {
	if err := w.pool.Claim(ctx, item.ItemID); err != nil {
		return err
	}
	sender, err := w.mailer.Dial()
	if err != nil {
		w.fail(ctx, item, err, &Stats{})
		return err
	}
	defer sender.Close()
	if err := w.deliver(ctx, sender, item); err != nil {
		w.fail(ctx, item, err, &Stats{})
		return err
	}
	return nil
}

func (w *EmailWorker) deliver(ctx context.Context, sender smtp.Sender, item *domain.EmailPoolItem) error {
	if !validate.ValidEmail(item.Email) {
		return fmt.Errorf("invalid recipient %q", item.Email)
	}
	if err := sender.Send(item.Email, item.Subject, item.Content); err != nil {
		return err
	}
	if err := w.sentLog.Put(ctx, &domain.EmailSent{
		SentID:     id.New(),
		Email:      item.Email,
		TemplateID: item.TemplateID,
		Content:    item.Content,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return err
	}
	return w.pool.Delete(ctx, item.ItemID)
}

func (w *EmailWorker) fail(ctx context.Context, item *domain.EmailPoolItem, cause error, stats *Stats) {
	attempts := item.SendAttempts + 1
	if attempts >= w.maxAttempts {
		slog.Warn("email dropped after max attempts",
			"item_id", item.ItemID, "attempts", attempts, "err", cause)
		if err := w.pool.Delete(ctx, item.ItemID); err != nil {
			slog.Error("could not drop email pool item", "item_id", item.ItemID, "err", err)
		}
		stats.Dropped++
		return
	}
	slog.Warn("email delivery failed", "item_id", item.ItemID, "attempts", attempts, "err", cause)
	if err := w.pool.MarkError(ctx, item.ItemID, attempts); err != nil {
		slog.Error("could not mark email pool item", "item_id", item.ItemID, "err", err)
	}
	stats.Failed++
}

package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/infrastructure/sns"
	"github.com/go-api-pool/internal/pkg/id"
)

type pushPoolStore interface {
	ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.PushPoolItem, error)
	Claim(ctx context.Context, itemID string) error
	MarkError(ctx context.Context, itemID string, attempts int) error
	Delete(ctx context.Context, itemID string) error
}

type pushSentStore interface {
	Put(ctx context.Context, sent *domain.PushSent) error
}

type deviceLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
}

type inboxStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

// PushWorker fans one pool row out to every registered device of its user
// and mirrors the message into the user's in-app notification inbox.
type PushWorker struct {
	pool        pushPoolStore
	sentLog     pushSentStore
	devices     deviceLister
	inbox       inboxStore
	sender      sns.PushSender
	maxAttempts int
}

func NewPushWorker(pool pushPoolStore, sentLog pushSentStore, devices deviceLister, inbox inboxStore, sender sns.PushSender, maxAttempts int) *PushWorker {
	return &PushWorker{pool: pool, sentLog: sentLog, devices: devices, inbox: inbox, sender: sender, maxAttempts: maxAttempts}
}

func (w *PushWorker) Run(ctx context.Context, limit int32) (Stats, error) {
	var stats Stats
	items, err := w.pool.ListDue(ctx, time.Now().UTC(), limit)
	if err != nil {
		return stats, fmt.Errorf("list due push: %w", err)
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
		slog.Info("push pool cycle",
			"sent", stats.Sent, "failed", stats.Failed,
			"skipped", stats.Skipped, "dropped", stats.Dropped)
	}
	return stats, nil
}

func (w *PushWorker) SendOne(ctx context.Context, item *domain.PushPoolItem) error {
	if err := w.pool.Claim(ctx, item.ItemID); err != nil {
		return err
	}
	if err := w.deliver(ctx, item); err != nil {
		w.fail(ctx, item, err, &Stats{})
		return err
	}
	return nil
}

// deliver pushes to each device carrying a token. Devices without a token
// (never registered with the platform) are skipped silently; the inbox row
// is written regardless so the message is visible in-app.
func (w *PushWorker) deliver(ctx context.Context, item *domain.PushPoolItem) error {
	devices, err := w.devices.ListByUser(ctx, item.UserID)
	if err != nil {
		return err
	}
	var data map[string]string
	if item.Data != "" {
		if err := json.Unmarshal([]byte(item.Data), &data); err != nil {
			return fmt.Errorf("decode push data: %w", err)
		}
	}
	now := time.Now().UTC()
	for _, dev := range devices {
		if !dev.Enable || dev.Token == nil || *dev.Token == "" {
			continue
		}
		if err := w.sender.SendPush(ctx, *dev.Token, item.Message, data); err != nil {
			return fmt.Errorf("push to device %s: %w", dev.DeviceID, err)
		}
		if err := w.sentLog.Put(ctx, &domain.PushSent{
			SentID:     id.New(),
			UserID:     item.UserID,
			DeviceID:   dev.DeviceID,
			TemplateID: item.TemplateID,
			Message:    item.Message,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
	}
	if err := w.inbox.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         item.UserID,
		TemplateID:     &item.TemplateID,
		Message:        item.Message,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		return err
	}
	return w.pool.Delete(ctx, item.ItemID)
}

func (w *PushWorker) fail(ctx context.Context, item *domain.PushPoolItem, cause error, stats *Stats) {
	attempts := item.SendAttempts + 1
	if attempts >= w.maxAttempts {
		slog.Warn("push dropped after max attempts",
			"item_id", item.ItemID, "attempts", attempts, "err", cause)
		if err := w.pool.Delete(ctx, item.ItemID); err != nil {
			slog.Error("could not drop push pool item", "item_id", item.ItemID, "err", err)
		}
		stats.Dropped++
		return
	}
	slog.Warn("push delivery failed", "item_id", item.ItemID, "attempts", attempts, "err", cause)
	if err := w.pool.MarkError(ctx, item.ItemID, attempts); err != nil {
		slog.Error("could not mark push pool item", "item_id", item.ItemID, "err", err)
	}
	stats.Failed++
}

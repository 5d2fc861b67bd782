package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/id"
)

type pushPoolWriter interface {
	Put(ctx context.Context, item *domain.PushPoolItem) error
}

type pushTemplateStore interface {
	Get(ctx context.Context, templateID string) (*domain.PushTemplate, error)
}

type pushDispatcher interface {
	SendOne(ctx context.Context, item *domain.PushPoolItem) error
}

type PushEnqueuer struct {
	pool       pushPoolWriter
	templates  pushTemplateStore
	dispatcher pushDispatcher
}

func NewPushEnqueuer(pool pushPoolWriter, templates pushTemplateStore, dispatcher pushDispatcher) *PushEnqueuer {
	return &PushEnqueuer{pool: pool, templates: templates, dispatcher: dispatcher}
}

// Enqueue stores one push pool row per user. The template's catalogue
// Action, when set, is merged into the extra data delivered with the push.
func (e *PushEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, data map[string]string, opts Options, userIDs ...string) error {
	tpl, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return err
	}
	if !tpl.Enable {
		return fmt.Errorf("push template %q disabled: %w", templateID, domain.ErrNotFound)
	}
	message := Render(tpl.Message, params)

	payload := map[string]string{}
	for k, v := range data {
		payload[k] = v
	}
	if tpl.Action != "" {
		payload["action"] = tpl.Action
	}
	var encoded string
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode push data: %w", err)
		}
		encoded = string(b)
	}

	now := time.Now().UTC()
	sendTime := opts.sendTime(now)

	var first *domain.PushPoolItem
	for _, userID := range userIDs {
		item := &domain.PushPoolItem{
			ItemID:     id.New(),
			UserID:     userID,
			TemplateID: templateID,
			Status:     domain.PoolStatusPending,
			Message:    message,
			Data:       encoded,
			SendTime:   sendTime,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := e.pool.Put(ctx, item); err != nil {
			return err
		}
		if first == nil {
			first = item
		}
	}

	if opts.SendNow && len(userIDs) == 1 && !sendTime.After(now) {
		if err := e.dispatcher.SendOne(ctx, first); err != nil {
			slog.Warn("send-now push failed, left in pool", "item_id", first.ItemID, "err", err)
		}
	}
	return nil
}

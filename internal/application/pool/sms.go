package pool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/id"
)

// SMSRecipient carries the phone denormalized into the pool row so the
// worker never needs a user lookup.
type SMSRecipient struct {
	UserID string
	Phone  string
}

type smsPoolWriter interface {
	Put(ctx context.Context, item *domain.SMSPoolItem) error
}

type smsTemplateStore interface {
	Get(ctx context.Context, templateID string) (*domain.SMSTemplate, error)
}

type smsDispatcher interface {
	SendOne(ctx context.Context, item *domain.SMSPoolItem) error
}

type SMSEnqueuer struct {
	pool       smsPoolWriter
	templates  smsTemplateStore
	dispatcher smsDispatcher
}

func NewSMSEnqueuer(pool smsPoolWriter, templates smsTemplateStore, dispatcher smsDispatcher) *SMSEnqueuer {
	return &SMSEnqueuer{pool: pool, templates: templates, dispatcher: dispatcher}
}

func (e *SMSEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, opts Options, recipients ...SMSRecipient) error {
	tpl, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return err
	}
	if !tpl.Enable {
		return fmt.Errorf("sms template %q disabled: %w", templateID, domain.ErrNotFound)
	}
	message := Render(tpl.Message, params)
	now := time.Now().UTC()
	sendTime := opts.sendTime(now)

	var first *domain.SMSPoolItem
	for _, rcpt := range recipients {
		item := &domain.SMSPoolItem{
			ItemID:     id.New(),
			UserID:     rcpt.UserID,
			Phone:      rcpt.Phone,
			TemplateID: templateID,
			Status:     domain.PoolStatusPending,
			Message:    message,
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

	if opts.SendNow && len(recipients) == 1 && !sendTime.After(now) {
		if err := e.dispatcher.SendOne(ctx, first); err != nil {
			slog.Warn("send-now sms failed, left in pool", "item_id", first.ItemID, "err", err)
		}
	}
	return nil
}

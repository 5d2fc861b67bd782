// Package pool enqueues notifications into the channel pool tables. Items
// are picked up by the delivery workers; an item enqueued with SendNow and
// an elapsed send time is handed to the worker immediately instead of
// waiting for the next cycle.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/id"
)

// Options control when an enqueued item goes out.
type Options struct {
	// SendTime schedules delivery; zero means due immediately.
	SendTime time.Time
	// SendNow attempts an in-line delivery after persisting the item. Only
	// honored for a single recipient whose send time has passed; fan-outs
	// always wait for the worker.
	SendNow bool
}

func (o Options) sendTime(now time.Time) time.Time {
	if o.SendTime.IsZero() {
		return now
	}
	return o.SendTime.UTC()
}

type emailPoolWriter interface {
	Put(ctx context.Context, item *domain.EmailPoolItem) error
}

type emailTemplateStore interface {
	Get(ctx context.Context, templateID string) (*domain.EmailTemplate, error)
}

type emailDispatcher interface {
	SendOne(ctx context.Context, item *domain.EmailPoolItem) error
}

type EmailEnqueuer struct {
	pool       emailPoolWriter
	templates  emailTemplateStore
	dispatcher emailDispatcher
}

func NewEmailEnqueuer(pool emailPoolWriter, templates emailTemplateStore, dispatcher emailDispatcher) *EmailEnqueuer {
	return &EmailEnqueuer{pool: pool, templates: templates, dispatcher: dispatcher}
}

// Enqueue renders the template once and stores one pool row per recipient.
func (e *EmailEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, opts Options, emails ...string) error {
	tpl, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return err
	}
	if !tpl.Enable {
		return fmt.Errorf("email template %q disabled: %w", templateID, domain.ErrNotFound)
	}
	subject := Render(tpl.Subject, params)
	content := RenderHTML(tpl.HTML, params)
	now := time.Now().UTC()
	sendTime := opts.sendTime(now)

	var first *domain.EmailPoolItem
	for _, email := range emails {
		item := &domain.EmailPoolItem{
			ItemID:     id.New(),
			Email:      email,
			TemplateID: templateID,
			Status:     domain.PoolStatusPending,
			Subject:    subject,
			Content:    content,
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

	if opts.SendNow && len(emails) == 1 && !sendTime.After(now) {
		// Best effort: the row is already persisted, so a failure here just
		// leaves it for the worker.
		if err := e.dispatcher.SendOne(ctx, first); err != nil {
			slog.Warn("send-now email failed, left in pool", "item_id", first.ItemID, "err", err)
		}
	}
	return nil
}

package pool_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-api-pool/internal/application/delivery"
	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/infrastructure/smtp"
)

// In-memory pool store serving both the enqueuer (Put) and the worker
// (Claim/MarkError/Delete/ListDue), so a whole enqueue-to-sent cycle runs
// without infrastructure.
type memEmailPool struct {
	rows map[string]*domain.EmailPoolItem
}

func newMemEmailPool() *memEmailPool {
	return &memEmailPool{rows: map[string]*domain.EmailPoolItem{}}
}

func (p *memEmailPool) Put(_ context.Context, item *domain.EmailPoolItem) error {
	cp := *item
	p.rows[item.ItemID] = &cp
	return nil
}

func (p *memEmailPool) ListDue(_ context.Context, now time.Time, limit int32) ([]domain.EmailPoolItem, error) {
	var due []domain.EmailPoolItem
	for _, row := range p.rows {
		if (row.Status == domain.PoolStatusPending || row.Status == domain.PoolStatusError) &&
			!row.SendTime.After(now) && int32(len(due)) < limit {
			due = append(due, *row)
		}
	}
	return due, nil
}

func (p *memEmailPool) Claim(_ context.Context, itemID string) error {
	row, ok := p.rows[itemID]
	if !ok || row.Status == domain.PoolStatusProcessing {
		return fmt.Errorf("pool item already claimed: %w", domain.ErrConflict)
	}
	row.Status = domain.PoolStatusProcessing
	return nil
}

func (p *memEmailPool) MarkError(_ context.Context, itemID string, attempts int) error {
	row, ok := p.rows[itemID]
	if !ok {
		return fmt.Errorf("pool item %q: %w", itemID, domain.ErrNotFound)
	}
	row.Status = domain.PoolStatusError
	row.SendAttempts = attempts
	return nil
}

func (p *memEmailPool) Delete(_ context.Context, itemID string) error {
	delete(p.rows, itemID)
	return nil
}

type memEmailSent struct {
	rows []*domain.EmailSent
}

func (s *memEmailSent) Put(_ context.Context, sent *domain.EmailSent) error {
	cp := *sent
	s.rows = append(s.rows, &cp)
	return nil
}

type memEmailTemplates struct {
	tpl *domain.EmailTemplate
}

func (s *memEmailTemplates) Get(_ context.Context, templateID string) (*domain.EmailTemplate, error) {
	if s.tpl == nil || s.tpl.TemplateID != templateID {
		return nil, fmt.Errorf("template %q: %w", templateID, domain.ErrNotFound)
	}
	return s.tpl, nil
}

// recordingMailer captures delivered messages instead of talking SMTP.
type recordingMailer struct {
	to, subject, body []string
}

func (m *recordingMailer) Dial() (smtp.Sender, error) { return m, nil }
func (m *recordingMailer) Close() error               { return nil }

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	m.body = append(m.body, htmlBody)
	return nil
}

func (m *recordingMailer) SendEmail(to, subject, htmlBody string) error {
	return m.Send(to, subject, htmlBody)
}

func TestSendNowDeliversRenderedEmailAndLogsSent(t *testing.T) {
	poolStore := newMemEmailPool()
	sentLog := &memEmailSent{}
	mailer := &recordingMailer{}
	templates := &memEmailTemplates{tpl: &domain.EmailTemplate{
		TemplateID: domain.TemplatePasswordRecovery,
		Subject:    "OTP reset",
		HTML:       "Your code is {{otp}}",
		Enable:     true,
	}}

	worker := delivery.NewEmailWorker(poolStore, sentLog, mailer, 3)
	enq := pool.NewEmailEnqueuer(poolStore, templates, worker)

	err := enq.Enqueue(context.Background(), domain.TemplatePasswordRecovery,
		map[string]string{"otp": "AB3D9"},
		pool.Options{SendNow: true}, "user@example.com")
	require.NoError(t, err)

	// Delivered through the fast path: transport saw the substituted code,
	// the pool row is gone and the sent log holds the rendered content.
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "user@example.com", mailer.to[0])
	assert.Contains(t, mailer.body[0], "AB3D9")

	assert.Empty(t, poolStore.rows)
	require.Len(t, sentLog.rows, 1)
	assert.Equal(t, "user@example.com", sentLog.rows[0].Email)
	assert.Contains(t, sentLog.rows[0].Content, "AB3D9")
}

func TestScheduledEmailWaitsForWorkerCycle(t *testing.T) {
	poolStore := newMemEmailPool()
	sentLog := &memEmailSent{}
	mailer := &recordingMailer{}
	templates := &memEmailTemplates{tpl: &domain.EmailTemplate{
		TemplateID: domain.TemplatePasswordRecovery,
		Subject:    "OTP reset",
		HTML:       "Your code is {{otp}}",
		Enable:     true,
	}}

	worker := delivery.NewEmailWorker(poolStore, sentLog, mailer, 3)
	enq := pool.NewEmailEnqueuer(poolStore, templates, worker)

	err := enq.Enqueue(context.Background(), domain.TemplatePasswordRecovery,
		map[string]string{"otp": "AB3D9"},
		pool.Options{}, "user@example.com")
	require.NoError(t, err)

	// No fast path requested: nothing delivered until the worker drains.
	assert.Empty(t, mailer.to)
	require.Len(t, poolStore.rows, 1)

	stats, err := worker.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
	assert.Empty(t, poolStore.rows)
	require.Len(t, sentLog.rows, 1)
}

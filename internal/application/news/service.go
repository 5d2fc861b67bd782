package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/id"
)

const defaultRunDays = 30

type newsStore interface {
	Put(ctx context.Context, news *domain.News) error
	Get(ctx context.Context, newsID string) (*domain.News, error)
	ListActive(ctx context.Context, now string) ([]domain.News, error)
	ListPending(ctx context.Context, now string) ([]domain.News, error)
	Update(ctx context.Context, newsID string, fields map[string]interface{}) (*domain.News, error)
	Delete(ctx context.Context, newsID string) error
}

type userPager interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type pushEnqueuer interface {
	Enqueue(ctx context.Context, templateID string, params map[string]string, data map[string]string, opts pool.Options, userIDs ...string) error
}

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreateNewsRequest) (*domain.News, error)
	Get(ctx context.Context, newsID string) (*domain.News, error)
	ListActive(ctx context.Context) ([]domain.News, error)
	// ListPending returns news whose start date has not arrived yet.
	ListPending(ctx context.Context) ([]domain.News, error)
	Update(ctx context.Context, newsID string, req domain.UpdateNewsRequest) (*domain.News, error)
	Delete(ctx context.Context, newsID string) error
}

type service struct {
	repo  newsStore
	users userPager
	push  pushEnqueuer
}

func NewService(repo newsStore, users userPager, push pushEnqueuer) Service {
	return &service{repo: repo, users: users, push: push}
}

// Create stores the news item. Urgent news additionally enqueues a push for
// every user except the author, scheduled at the start date so the worker
// delivers it when the item goes live.
func (s *service) Create(ctx context.Context, authorID string, req domain.CreateNewsRequest) (*domain.News, error) {
	now := time.Now().UTC()
	start := now
	if req.StartDate != "" {
		t, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startdate: %w", domain.ErrBadRequest)
		}
		start = t.UTC()
	}
	end := start.Add(defaultRunDays * 24 * time.Hour)
	if req.EndDate != "" {
		t, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid enddate: %w", domain.ErrBadRequest)
		}
		end = t.UTC()
	}
	if end.Before(start) {
		return nil, fmt.Errorf("enddate before startdate: %w", domain.ErrBadRequest)
	}

	n := &domain.News{
		NewsID:          id.New(),
		UserID:          authorID,
		Type:            req.Type,
		Title:           req.Title,
		Body:            req.Body,
		FileIDImage:     req.FileID,
		FileIDThumbnail: req.ThumbnailID,
		StartDate:       start,
		EndDate:         end,
		Enable:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}

	if n.Type == domain.NewsTypeUrgent {
		if err := s.fanOutPush(ctx, n); err != nil {
			// The news item itself is saved; the fan-out can be re-triggered
			// by an update.
			slog.Error("urgent news push fan-out failed", "news_id", n.NewsID, "err", err)
		}
	}
	return n, nil
}

func (s *service) fanOutPush(ctx context.Context, n *domain.News) error {
	var (
		cursor  string
		userIDs []string
	)
	for {
		users, next, err := s.users.ScanPage(ctx, 500, cursor)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.UserID == n.UserID {
				continue
			}
			userIDs = append(userIDs, u.UserID)
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if len(userIDs) == 0 {
		return nil
	}
	return s.push.Enqueue(ctx, domain.TemplateUrgentNews,
		map[string]string{"title": n.Title},
		map[string]string{"news_id": n.NewsID},
		pool.Options{SendTime: n.StartDate},
		userIDs...)
}

func (s *service) Get(ctx context.Context, newsID string) (*domain.News, error) {
	return s.repo.Get(ctx, newsID)
}

func (s *service) ListActive(ctx context.Context) ([]domain.News, error) {
	return s.repo.ListActive(ctx, time.Now().UTC().Format(time.RFC3339))
}

func (s *service) ListPending(ctx context.Context) ([]domain.News, error) {
	return s.repo.ListPending(ctx, time.Now().UTC().Format(time.RFC3339))
}

func (s *service) Update(ctx context.Context, newsID string, req domain.UpdateNewsRequest) (*domain.News, error) {
	fields := map[string]interface{}{
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Body != nil {
		fields["body"] = *req.Body
	}
	if req.StartDate != nil {
		t, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startdate: %w", domain.ErrBadRequest)
		}
		fields["start_date"] = t.UTC().Format(time.RFC3339)
	}
	if req.EndDate != nil {
		t, err := time.Parse(time.RFC3339, *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid enddate: %w", domain.ErrBadRequest)
		}
		fields["end_date"] = t.UTC().Format(time.RFC3339)
	}
	if req.Enable != nil {
		fields["enable"] = *req.Enable
	}
	return s.repo.Update(ctx, newsID, fields)
}

func (s *service) Delete(ctx context.Context, newsID string) error {
	return s.repo.Delete(ctx, newsID)
}

package news

import (
	"context"
	"testing"
	"time"

	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNewsStore struct{ mock.Mock }

func (m *mockNewsStore) Put(ctx context.Context, news *domain.News) error {
	return m.Called(ctx, news).Error(0)
}
func (m *mockNewsStore) Get(ctx context.Context, newsID string) (*domain.News, error) {
	args := m.Called(ctx, newsID)
	if n, _ := args.Get(0).(*domain.News); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNewsStore) ListActive(ctx context.Context, now string) ([]domain.News, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.News), args.Error(1)
}
func (m *mockNewsStore) ListPending(ctx context.Context, now string) ([]domain.News, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.News), args.Error(1)
}
func (m *mockNewsStore) Update(ctx context.Context, newsID string, fields map[string]interface{}) (*domain.News, error) {
	args := m.Called(ctx, newsID, fields)
	if n, _ := args.Get(0).(*domain.News); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNewsStore) Delete(ctx context.Context, newsID string) error {
	return m.Called(ctx, newsID).Error(0)
}

type mockUserPager struct{ mock.Mock }

func (m *mockUserPager) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

type mockPushEnqueuer struct{ mock.Mock }

func (m *mockPushEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, data map[string]string, opts pool.Options, userIDs ...string) error {
	return m.Called(ctx, templateID, params, data, opts, userIDs).Error(0)
}

func TestCreateGeneralNewsDoesNotPush(t *testing.T) {
	repo := new(mockNewsStore)
	users := new(mockUserPager)
	push := new(mockPushEnqueuer)

	repo.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.News) bool {
		return n.Type == domain.NewsTypeGeneral && n.Enable
	})).Return(nil)

	svc := NewService(repo, users, push)
	n, err := svc.Create(context.Background(), "admin1", domain.CreateNewsRequest{
		Type:  domain.NewsTypeGeneral,
		Title: "Release notes",
		Body:  "…",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.NewsID)
	push.AssertNotCalled(t, "Enqueue",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateUrgentNewsFansOutScheduledPush(t *testing.T) {
	repo := new(mockNewsStore)
	users := new(mockUserPager)
	push := new(mockPushEnqueuer)

	start := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)

	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	users.On("ScanPage", mock.Anything, int32(500), "").Return([]domain.User{
		{UserID: "u1"}, {UserID: "admin1"}, {UserID: "u2"},
	}, "next", nil)
	users.On("ScanPage", mock.Anything, int32(500), "next").Return([]domain.User{
		{UserID: "u3"},
	}, "", nil)
	// The author is in the user scan but must not be pushed at.
	push.On("Enqueue", mock.Anything, domain.TemplateUrgentNews,
		map[string]string{"title": "Storm warning"},
		mock.Anything,
		mock.MatchedBy(func(opts pool.Options) bool { return opts.SendTime.Equal(start) }),
		[]string{"u1", "u2", "u3"}).Return(nil)

	svc := NewService(repo, users, push)
	_, err := svc.Create(context.Background(), "admin1", domain.CreateNewsRequest{
		Type:      domain.NewsTypeUrgent,
		Title:     "Storm warning",
		Body:      "…",
		StartDate: start.Format(time.RFC3339),
	})
	require.NoError(t, err)
	push.AssertExpectations(t)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	repo := new(mockNewsStore)
	users := new(mockUserPager)
	push := new(mockPushEnqueuer)

	svc := NewService(repo, users, push)
	_, err := svc.Create(context.Background(), "admin1", domain.CreateNewsRequest{
		Type:      domain.NewsTypeGeneral,
		Title:     "t",
		Body:      "b",
		StartDate: time.Now().Add(time.Hour).Format(time.RFC3339),
		EndDate:   time.Now().Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPushPool struct{ mock.Mock }

func (m *mockPushPool) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.PushPoolItem, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]domain.PushPoolItem), args.Error(1)
}
func (m *mockPushPool) Claim(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}
func (m *mockPushPool) MarkError(ctx context.Context, itemID string, attempts int) error {
	return m.Called(ctx, itemID, attempts).Error(0)
}
func (m *mockPushPool) Delete(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

type mockPushSent struct{ mock.Mock }

func (m *mockPushSent) Put(ctx context.Context, sent *domain.PushSent) error {
	return m.Called(ctx, sent).Error(0)
}

type mockDeviceLister struct{ mock.Mock }

func (m *mockDeviceLister) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Device), args.Error(1)
}

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockPushSender struct{ mock.Mock }

func (m *mockPushSender) SendPush(ctx context.Context, deviceToken, message string, data map[string]string) error {
	return m.Called(ctx, deviceToken, message, data).Error(0)
}

func strptr(s string) *string { return &s }

func TestPushRunFansOutToTokenedDevices(t *testing.T) {
	poolStore := new(mockPushPool)
	sentLog := new(mockPushSent)
	devices := new(mockDeviceLister)
	inbox := new(mockInbox)
	sender := new(mockPushSender)

	item := domain.PushPoolItem{
		ItemID:     "p1",
		UserID:     "u1",
		TemplateID: domain.TemplateUrgentNews,
		Status:     domain.PoolStatusPending,
		Message:    "Storm warning",
		Data:       `{"action":"open-news"}`,
		SendTime:   time.Now().Add(-time.Minute),
	}
	poolStore.On("ListDue", mock.Anything, mock.Anything, int32(100)).Return([]domain.PushPoolItem{item}, nil)
	poolStore.On("Claim", mock.Anything, "p1").Return(nil)
	devices.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{
		{DeviceID: "d1", UserID: "u1", Token: strptr("tok-1"), Enable: true},
		{DeviceID: "d2", UserID: "u1", Enable: true},                         // never registered
		{DeviceID: "d3", UserID: "u1", Token: strptr("tok-3"), Enable: false}, // disabled
	}, nil)
	sender.On("SendPush", mock.Anything, "tok-1", "Storm warning",
		map[string]string{"action": "open-news"}).Return(nil)
	sentLog.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.PushSent) bool {
		return s.UserID == "u1" && s.DeviceID == "d1"
	})).Return(nil)
	inbox.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "u1" && n.Message == "Storm warning" && n.Readed == 0
	})).Return(nil)
	poolStore.On("Delete", mock.Anything, "p1").Return(nil)

	w := NewPushWorker(poolStore, sentLog, devices, inbox, sender, 3)
	stats, err := w.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, Stats{Sent: 1}, stats)
	// Only the enabled, tokened device got a push.
	sender.AssertNumberOfCalls(t, "SendPush", 1)
	inbox.AssertExpectations(t)
}

func TestPushRunNoDevicesStillWritesInbox(t *testing.T) {
	poolStore := new(mockPushPool)
	sentLog := new(mockPushSent)
	devices := new(mockDeviceLister)
	inbox := new(mockInbox)
	sender := new(mockPushSender)

	item := domain.PushPoolItem{
		ItemID:   "p1",
		UserID:   "u1",
		Message:  "hello",
		Status:   domain.PoolStatusPending,
		SendTime: time.Now().Add(-time.Minute),
	}
	poolStore.On("ListDue", mock.Anything, mock.Anything, int32(100)).Return([]domain.PushPoolItem{item}, nil)
	poolStore.On("Claim", mock.Anything, "p1").Return(nil)
	devices.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{}, nil)
	inbox.On("Put", mock.Anything, mock.Anything).Return(nil)
	poolStore.On("Delete", mock.Anything, "p1").Return(nil)

	w := NewPushWorker(poolStore, sentLog, devices, inbox, sender, 3)
	stats, err := w.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, Stats{Sent: 1}, stats)
	sender.AssertNotCalled(t, "SendPush", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

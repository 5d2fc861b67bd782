package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, refreshToken)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}
func (m *mockSessionStore) GetByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	args := m.Called(ctx, userID, deviceID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) GetByUserAndUUID(ctx context.Context, userID, uuid string) (*domain.Device, error) {
	args := m.Called(ctx, userID, uuid)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}

type mockJWT struct{ mock.Mock }

func (m *mockJWT) Sign(userID, deviceID, role, sessionID string) (string, error) {
	args := m.Called(userID, deviceID, role, sessionID)
	return args.String(0), args.Error(1)
}

func newTestService(sessions *mockSessionStore, users *mockUserStore, devices *mockDeviceStore, jwts *mockJWT) Service {
	return NewService(ServiceDeps{
		SessionRepo:     sessions,
		UserRepo:        users,
		DeviceRepo:      devices,
		JWTProvider:     jwts,
		RefreshTokenDur: 30 * 24 * time.Hour,
		Freshness:       3 * 24 * time.Hour,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- tests ---

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	users.On("GetByUsername", mock.Anything, "ada").Return(&domain.User{
		UserID:       "u1",
		Username:     "ada",
		PasswordHash: hashOf(t, "correct horse"),
		Enable:       1,
	}, nil)

	svc := newTestService(sessions, users, devices, jwts)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ada", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	users.On("GetByEmail", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newTestService(sessions, users, devices, jwts)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStartOrRefreshReusesDeviceAndSession(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	u := &domain.User{UserID: "u1", Role: domain.RoleUser, Enable: 1}
	uuid := "phone-uuid"

	devices.On("GetByUserAndUUID", mock.Anything, "u1", uuid).Return(&domain.Device{
		DeviceID: "d1", UUID: uuid, UserID: "u1", Enable: true,
	}, nil)
	sessions.On("GetByUserAndDevice", mock.Anything, "u1", "d1").Return(&domain.Session{
		SessionID: "s1", UserID: "u1", DeviceID: "d1", Enable: false,
	}, nil)
	sessions.On("Update", mock.Anything, "s1", mock.Anything).Return(nil)
	jwts.On("Sign", "u1", "d1", domain.RoleUser, "s1").Return("bearer-token", nil)

	svc := newTestService(sessions, users, devices, jwts)
	res, err := svc.StartOrRefresh(context.Background(), u, &uuid)
	require.NoError(t, err)

	// Same session row comes back re-enabled with a fresh refresh token.
	assert.Equal(t, "s1", res.Session.SessionID)
	assert.True(t, res.Session.Enable)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "bearer-token", res.Bearer)

	// No new rows were created for either the device or the session.
	devices.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestStartOrRefreshCreatesSessionForNewDevice(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	u := &domain.User{UserID: "u1", Role: domain.RoleUser, Enable: 1}
	uuid := "new-uuid"

	devices.On("GetByUserAndUUID", mock.Anything, "u1", uuid).Return(nil, domain.ErrNotFound)
	devices.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.Device) bool {
		return d.UserID == "u1" && d.UUID == uuid
	})).Return(nil)
	sessions.On("GetByUserAndDevice", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrNotFound)
	sessions.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.UserID == "u1" && s.Enable && s.RefreshToken != ""
	})).Return(nil)
	jwts.On("Sign", "u1", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer-token", nil)

	svc := newTestService(sessions, users, devices, jwts)
	res, err := svc.StartOrRefresh(context.Background(), u, &uuid)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Session.SessionID)
	devices.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestGetCurrentStaleSessionIsDisabled(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	stale := &domain.Session{
		SessionID: "s1",
		UserID:    "u1",
		Enable:    true,
		UpdatedAt: time.Now().Add(-10 * 24 * time.Hour),
	}
	sessions.On("Get", mock.Anything, "s1").Return(stale, nil)
	sessions.On("Update", mock.Anything, "s1", map[string]interface{}{fieldEnable: false}).Return(nil)

	svc := newTestService(sessions, users, devices, jwts)
	_, err := svc.GetCurrent(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertExpectations(t)
}

func TestGetCurrentFreshSession(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	sessions.On("Get", mock.Anything, "s1").Return(&domain.Session{
		SessionID: "s1", UserID: "u1", Enable: true, UpdatedAt: time.Now(),
	}, nil)
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Enable: 1}, nil)

	svc := newTestService(sessions, users, devices, jwts)
	sess, err := svc.GetCurrent(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1", sess.User.UserID)
}

func TestRefreshRotatesToken(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		DeviceID:         "d1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	sessions.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleUser, Enable: 1}, nil)
	jwts.On("Sign", "u1", "d1", domain.RoleUser, "s1").Return("new-bearer", nil)

	svc := newTestService(sessions, users, devices, jwts)
	bearer, newToken, err := svc.Refresh(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, "new-bearer", bearer)
	assert.NotEqual(t, "old-token", newToken)
}

func TestRefreshExpiredTokenIsUnauthorized(t *testing.T) {
	sessions := new(mockSessionStore)
	users := new(mockUserStore)
	devices := new(mockDeviceStore)
	jwts := new(mockJWT)

	sessions.On("GetByRefreshToken", mock.Anything, "expired").Return(&domain.Session{
		SessionID:        "s1",
		Enable:           true,
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := newTestService(sessions, users, devices, jwts)
	_, _, err := svc.Refresh(context.Background(), "expired")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

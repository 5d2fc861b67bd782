package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/device"
	"github.com/go-api-pool/internal/pkg/id"
	"github.com/go-api-pool/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	fieldEnable           = "enable"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldUpdatedAt        = "updated_at"
)

type LoginRequest struct {
	Username   string  `json:"username" validate:"required"`
	Password   string  `json:"password" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// StartOrRefresh is the shared session bootstrap used after any successful
	// authentication (password login, OTP validation, registration). It reuses
	// the user's session row per device instead of stacking new rows.
	StartOrRefresh(ctx context.Context, u *domain.User, deviceUUID *string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	GetByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.Session, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type jwtSigner interface {
	Sign(userID, deviceID, role, sessionID string) (string, error)
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	UserRepo        userStore
	DeviceRepo      device.Store
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
	// Freshness bounds how long a session may sit untouched before GetCurrent
	// rejects it, independent of the bearer's own expiry.
	Freshness time.Duration
}

type service struct {
	sessionRepo     sessionStore
	userRepo        userStore
	deviceRepo      device.Store
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
	freshness       time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		userRepo:        deps.UserRepo,
		deviceRepo:      deps.DeviceRepo,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
		freshness:       deps.Freshness,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		u, err = s.userRepo.GetByEmail(ctx, req.Username)
	}
	// Same response whether the account is missing, disabled or the password
	// is wrong: no account enumeration.
	if err != nil || !u.Enabled() {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.StartOrRefresh(ctx, u, req.DeviceUUID)
}

func (s *service) StartOrRefresh(ctx context.Context, u *domain.User, deviceUUID *string) (*LoginResult, error) {
	dev, err := device.Resolve(ctx, s.deviceRepo, deviceUUID, u.UserID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiry := now.Add(s.refreshTokenDur).Unix()

	sess, err := s.sessionRepo.GetByUserAndDevice(ctx, u.UserID, dev.DeviceID)
	if err == nil {
		// Reuse the row: re-enable it, rotate the refresh token and bump
		// updated_at so the freshness clock restarts.
		if err := s.sessionRepo.Update(ctx, sess.SessionID, map[string]interface{}{
			fieldEnable:           true,
			fieldRefreshToken:     refreshToken,
			fieldRefreshExpiresAt: expiry,
			fieldUpdatedAt:        now.Format(time.RFC3339),
		}); err != nil {
			return nil, err
		}
		sess.Enable = true
		sess.RefreshToken = refreshToken
		sess.RefreshExpiresAt = expiry
		sess.UpdatedAt = now
	} else {
		sess = &domain.Session{
			SessionID:        id.New(),
			UserID:           u.UserID,
			DeviceID:         dev.DeviceID,
			Enable:           true,
			RefreshToken:     refreshToken,
			RefreshExpiresAt: expiry,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.sessionRepo.Put(ctx, sess); err != nil {
			return nil, err
		}
	}

	bearer, err := s.jwtProvider.Sign(u.UserID, dev.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{fieldEnable: false})
}

// GetCurrent returns the session joined with its user, enforcing the
// staleness window. A stale session is disabled as a side effect so the next
// call fails fast.
func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session closed: %w", domain.ErrUnauthorized)
	}
	if s.freshness > 0 && time.Since(sess.UpdatedAt) > s.freshness {
		_ = s.sessionRepo.Update(ctx, sess.SessionID, map[string]interface{}{fieldEnable: false})
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if !sess.Enable || sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := token.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, sess.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/application/session"
	"github.com/go-api-pool/internal/domain"
	"github.com/go-api-pool/internal/pkg/otp"
	"github.com/go-api-pool/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

const otpLength = 5

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateOTPRequest struct {
	OTP        string  `json:"otp" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type Service interface {
	// RequestPasswordRecovery emails a short-lived OTP to the account. The
	// email goes through the pool with send-now so a delivery failure is
	// retried by the worker.
	RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error
	// ValidateOTP consumes the code and opens a session for its owner.
	ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*session.LoginResult, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ValidateEmailToken(ctx context.Context, userID, tok string) error
	RequestPhoneConfirmation(ctx context.Context, userID string) error
	ValidatePhoneOTP(ctx context.Context, userID, code string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
	GetByCode(ctx context.Context, code, verType string) (*domain.UserVerification, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStarter interface {
	StartOrRefresh(ctx context.Context, u *domain.User, deviceUUID *string) (*session.LoginResult, error)
}

type emailEnqueuer interface {
	Enqueue(ctx context.Context, templateID string, params map[string]string, opts pool.Options, emails ...string) error
}

type smsEnqueuer interface {
	Enqueue(ctx context.Context, templateID string, params map[string]string, opts pool.Options, recipients ...pool.SMSRecipient) error
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	Sessions         sessionStarter
	EmailPool        emailEnqueuer
	SMSPool          smsEnqueuer
	OTPExpiry        time.Duration
	EmailTokenExpiry time.Duration
}

type service struct {
	verifications    verificationStore
	users            userStore
	sessions         sessionStarter
	emailPool        emailEnqueuer
	smsPool          smsEnqueuer
	otpExpiry        time.Duration
	emailTokenExpiry time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verifications:    deps.VerificationRepo,
		users:            deps.UserRepo,
		sessions:         deps.Sessions,
		emailPool:        deps.EmailPool,
		smsPool:          deps.SMSPool,
		otpExpiry:        deps.OTPExpiry,
		emailTokenExpiry: deps.EmailTokenExpiry,
	}
}

func (s *service) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("account: %w", domain.ErrNotFound)
	}
	code, err := otp.Generate(otpLength)
	if err != nil {
		return err
	}
	// One pending OTP per user: a new request overwrites the previous row.
	if err := s.verifications.Put(ctx, &domain.UserVerification{
		UserID:    u.UserID,
		Type:      domain.VerificationOTP,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpExpiry).Unix(),
	}); err != nil {
		return err
	}
	return s.emailPool.Enqueue(ctx, domain.TemplatePasswordRecovery,
		map[string]string{"otp": code, "name": u.FirstName},
		pool.Options{SendNow: true}, u.Email)
}

func (s *service) ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*session.LoginResult, error) {
	v, err := s.verifications.GetByCode(ctx, req.OTP, domain.VerificationOTP)
	if err != nil {
		return nil, fmt.Errorf("code incorrect: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	// Consume before opening the session so the code is single use even if
	// the session bootstrap fails.
	if err := s.verifications.Delete(ctx, v.UserID, domain.VerificationOTP); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	return s.sessions.StartOrRefresh(ctx, u, req.DeviceUUID)
}

func (s *service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	tok, err := token.NewRefreshToken()
	if err != nil {
		return err
	}
	if err := s.verifications.Put(ctx, &domain.UserVerification{
		UserID:    userID,
		Type:      domain.VerificationEmail,
		Code:      tok,
		ExpiresAt: time.Now().Add(s.emailTokenExpiry).Unix(),
	}); err != nil {
		return err
	}
	return s.emailPool.Enqueue(ctx, domain.TemplateConfirmEmail,
		map[string]string{"token": tok, "name": u.FirstName},
		pool.Options{SendNow: true}, u.Email)
}

func (s *service) ValidateEmailToken(ctx context.Context, userID, tok string) error {
	v, err := s.verifications.Get(ctx, userID, domain.VerificationEmail)
	if err != nil || v.Code != tok {
		return fmt.Errorf("token incorrect: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verifications.Delete(ctx, userID, domain.VerificationEmail); err != nil {
		slog.Warn("could not delete email verification", "user_id", userID, "err", err)
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"email_confirmed": true})
}

func (s *service) RequestPhoneConfirmation(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone on account: %w", domain.ErrBadRequest)
	}
	code, err := otp.Generate(otpLength)
	if err != nil {
		return err
	}
	if err := s.verifications.Put(ctx, &domain.UserVerification{
		UserID:    userID,
		Type:      domain.VerificationPhone,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpExpiry).Unix(),
	}); err != nil {
		return err
	}
	return s.smsPool.Enqueue(ctx, domain.TemplateOTPSMS,
		map[string]string{"otp": code},
		pool.Options{SendNow: true},
		pool.SMSRecipient{UserID: userID, Phone: *u.Phone})
}

func (s *service) ValidatePhoneOTP(ctx context.Context, userID, code string) error {
	v, err := s.verifications.Get(ctx, userID, domain.VerificationPhone)
	if err != nil || v.Code != code {
		return fmt.Errorf("code incorrect: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verifications.Delete(ctx, userID, domain.VerificationPhone); err != nil {
		slog.Warn("could not delete phone verification", "user_id", userID, "err", err)
	}
	return s.users.Update(ctx, userID, map[string]interface{}{"phone_confirmed": true})
}

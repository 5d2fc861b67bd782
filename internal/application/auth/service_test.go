package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-api-pool/internal/application/pool"
	"github.com/go-api-pool/internal/application/session"
	"github.com/go-api-pool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.UserVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	args := m.Called(ctx, userID, verType)
	if v, _ := args.Get(0).(*domain.UserVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, userID, verType string) error {
	return m.Called(ctx, userID, verType).Error(0)
}
func (m *mockVerificationStore) GetByCode(ctx context.Context, code, verType string) (*domain.UserVerification, error) {
	args := m.Called(ctx, code, verType)
	if v, _ := args.Get(0).(*domain.UserVerification); v != nil {
		return v, args.Error(1)
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
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockSessionStarter struct{ mock.Mock }

func (m *mockSessionStarter) StartOrRefresh(ctx context.Context, u *domain.User, deviceUUID *string) (*session.LoginResult, error) {
	args := m.Called(ctx, u, deviceUUID)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEmailEnqueuer struct{ mock.Mock }

func (m *mockEmailEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, opts pool.Options, emails ...string) error {
	return m.Called(ctx, templateID, params, opts, emails).Error(0)
}

type mockSMSEnqueuer struct{ mock.Mock }

func (m *mockSMSEnqueuer) Enqueue(ctx context.Context, templateID string, params map[string]string, opts pool.Options, recipients ...pool.SMSRecipient) error {
	return m.Called(ctx, templateID, params, opts, recipients).Error(0)
}

type deps struct {
	verifications *mockVerificationStore
	users         *mockUserStore
	sessions      *mockSessionStarter
	emailPool     *mockEmailEnqueuer
	smsPool       *mockSMSEnqueuer
}

func newTestService() (Service, deps) {
	d := deps{
		verifications: new(mockVerificationStore),
		users:         new(mockUserStore),
		sessions:      new(mockSessionStarter),
		emailPool:     new(mockEmailEnqueuer),
		smsPool:       new(mockSMSEnqueuer),
	}
	svc := NewService(ServiceDeps{
		VerificationRepo: d.verifications,
		UserRepo:         d.users,
		Sessions:         d.sessions,
		EmailPool:        d.emailPool,
		SMSPool:          d.smsPool,
		OTPExpiry:        15 * time.Minute,
		EmailTokenExpiry: 24 * time.Hour,
	})
	return svc, d
}

// --- tests ---

func TestRequestPasswordRecoveryEnqueuesOTPEmail(t *testing.T) {
	svc, d := newTestService()

	d.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(&domain.User{
		UserID: "u1", Email: "ada@example.com", FirstName: "Ada", Enable: 1,
	}, nil)
	var storedCode string
	d.verifications.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.UserVerification) bool {
		storedCode = v.Code
		return v.UserID == "u1" && v.Type == domain.VerificationOTP && len(v.Code) == otpLength
	})).Return(nil)
	d.emailPool.On("Enqueue", mock.Anything, domain.TemplatePasswordRecovery,
		mock.MatchedBy(func(params map[string]string) bool { return params["otp"] != "" }),
		pool.Options{SendNow: true}, []string{"ada@example.com"}).Return(nil)

	err := svc.RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Len(t, storedCode, otpLength)
	d.emailPool.AssertExpectations(t)
}

func TestRequestPasswordRecoveryUnknownEmail(t *testing.T) {
	svc, d := newTestService()
	d.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	err := svc.RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	d.emailPool.AssertNotCalled(t, "Enqueue",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateOTPOpensSessionAndConsumesCode(t *testing.T) {
	svc, d := newTestService()
	uuid := "phone-uuid"

	d.verifications.On("GetByCode", mock.Anything, "X7K2P9", domain.VerificationOTP).Return(&domain.UserVerification{
		UserID:    "u1",
		Type:      domain.VerificationOTP,
		Code:      "X7K2P9",
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	}, nil)
	d.verifications.On("Delete", mock.Anything, "u1", domain.VerificationOTP).Return(nil)
	u := &domain.User{UserID: "u1", Enable: 1}
	d.users.On("Get", mock.Anything, "u1").Return(u, nil)
	d.sessions.On("StartOrRefresh", mock.Anything, u, &uuid).Return(&session.LoginResult{
		Bearer: "bearer", RefreshToken: "refresh",
		Session: &domain.Session{SessionID: "s1", UserID: "u1"},
	}, nil)

	res, err := svc.ValidateOTP(context.Background(), ValidateOTPRequest{OTP: "X7K2P9", DeviceUUID: &uuid})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.Bearer)
	// The code is removed before the session opens: it cannot be replayed.
	d.verifications.AssertCalled(t, "Delete", mock.Anything, "u1", domain.VerificationOTP)
}

func TestValidateOTPWrongCode(t *testing.T) {
	svc, d := newTestService()
	d.verifications.On("GetByCode", mock.Anything, "WRONG1", domain.VerificationOTP).Return(nil, domain.ErrNotFound)

	_, err := svc.ValidateOTP(context.Background(), ValidateOTPRequest{OTP: "WRONG1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	d.sessions.AssertNotCalled(t, "StartOrRefresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateOTPExpiredCode(t *testing.T) {
	svc, d := newTestService()
	d.verifications.On("GetByCode", mock.Anything, "OLD123", domain.VerificationOTP).Return(&domain.UserVerification{
		UserID:    "u1",
		Type:      domain.VerificationOTP,
		Code:      "OLD123",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	_, err := svc.ValidateOTP(context.Background(), ValidateOTPRequest{OTP: "OLD123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	d.verifications.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPhoneConfirmationEnqueuesSMS(t *testing.T) {
	svc, d := newTestService()
	phone := "5512345678"

	d.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Phone: &phone, Enable: 1}, nil)
	d.verifications.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.UserVerification) bool {
		return v.Type == domain.VerificationPhone && len(v.Code) == otpLength
	})).Return(nil)
	d.smsPool.On("Enqueue", mock.Anything, domain.TemplateOTPSMS, mock.Anything,
		pool.Options{SendNow: true},
		[]pool.SMSRecipient{{UserID: "u1", Phone: phone}}).Return(nil)

	require.NoError(t, svc.RequestPhoneConfirmation(context.Background(), "u1"))
	d.smsPool.AssertExpectations(t)
}

func TestRequestPhoneConfirmationWithoutPhone(t *testing.T) {
	svc, d := newTestService()
	d.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Enable: 1}, nil)

	err := svc.RequestPhoneConfirmation(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestValidateEmailTokenMarksConfirmed(t *testing.T) {
	svc, d := newTestService()
	d.verifications.On("Get", mock.Anything, "u1", domain.VerificationEmail).Return(&domain.UserVerification{
		UserID:    "u1",
		Type:      domain.VerificationEmail,
		Code:      "tok-abc",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	d.verifications.On("Delete", mock.Anything, "u1", domain.VerificationEmail).Return(nil)
	d.users.On("Update", mock.Anything, "u1", map[string]interface{}{"email_confirmed": true}).Return(nil)

	require.NoError(t, svc.ValidateEmailToken(context.Background(), "u1", "tok-abc"))
	d.users.AssertExpectations(t)
}

func TestValidateEmailTokenMismatch(t *testing.T) {
	svc, d := newTestService()
	d.verifications.On("Get", mock.Anything, "u1", domain.VerificationEmail).Return(&domain.UserVerification{
		UserID:    "u1",
		Type:      domain.VerificationEmail,
		Code:      "tok-abc",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)

	err := svc.ValidateEmailToken(context.Background(), "u1", "tok-wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

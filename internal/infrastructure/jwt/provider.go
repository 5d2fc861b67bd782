package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-api-pool/internal/config"
	"github.com/go-api-pool/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	RoleID    string `json:"role_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
//
// Tokens are self-contained: verification needs only the public key, no store
// lookup. The flip side is that a token outlives a logged-out session until
// its natural expiry; session-sensitive operations re-check the stored
// session to narrow that window.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{privateKey: privKey, publicKey: pubKey, expiry: cfg.JWTExpiry}, nil
}

// NewProviderFromKeys builds a Provider from in-memory keys. Used by tests.
func NewProviderFromKeys(privKey *rsa.PrivateKey, expiry time.Duration) *Provider {
	return &Provider{privateKey: privKey, publicKey: &privKey.PublicKey, expiry: expiry}
}

// Sign mints a token with the provider's default expiry.
func (p *Provider) Sign(userID, deviceID, roleID, sessionID string) (string, error) {
	return p.SignTTL(userID, deviceID, roleID, sessionID, p.expiry)
}

// SignTTL mints a token expiring after ttl, captured at call time.
func (p *Provider) SignTTL(userID, deviceID, roleID, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		DeviceID:  deviceID,
		RoleID:    roleID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify checks signature and expiry and returns the embedded claims.
// Returns domain.ErrTokenExpired for a past exp, domain.ErrTokenMalformed for
// anything else wrong with the token.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: get a new one", domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", domain.ErrTokenMalformed)
	}
	return claims, nil
}

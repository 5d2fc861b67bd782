package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-api-pool/internal/domain"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, time.Hour)
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	p := testProvider(t)

	tok, err := p.Sign("u1", "d1", domain.RoleAdmin, "s1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "d1", claims.DeviceID)
	assert.Equal(t, domain.RoleAdmin, claims.RoleID)
	assert.Equal(t, "s1", claims.SessionID)
}

func TestVerify_ExpiredToken(t *testing.T) {
	p := testProvider(t)

	tok, err := p.SignTTL("u1", "d1", domain.RoleUser, "s1", -time.Minute)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerify_GarbageToken(t *testing.T) {
	p := testProvider(t)

	_, err := p.Verify("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_WrongKey(t *testing.T) {
	signer := testProvider(t)
	verifier := testProvider(t)

	tok, err := signer.Sign("u1", "d1", domain.RoleUser, "s1")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

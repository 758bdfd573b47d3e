package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	userID := uuid.New()

	token, exp, err := m.GenerateAccess(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	got, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)

	foreign, _, err := NewTokenManager("other", time.Minute).GenerateAccess(uuid.New())
	require.NoError(t, err)
	_, err = m.ParseAccess(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := NewTokenManager("secret", -time.Minute).GenerateAccess(uuid.New())
	require.NoError(t, err)
	_, err = m.ParseAccess(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsUnexpectedAlgorithm(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestVerifyRoundTrip(t *testing.T) {
	token, err := GenerateToken("uid-1", "alice@example.com", "Alice", testSecret, time.Hour)
	require.NoError(t, err)

	verifier := NewJWTVerifier(testSecret)
	identity, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "uid-1", identity.UID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice", identity.Name)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("uid-1", "alice@example.com", "", testSecret, -time.Minute)
	require.NoError(t, err)

	verifier := NewJWTVerifier(testSecret)
	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("uid-1", "alice@example.com", "", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	verifier := NewJWTVerifier(testSecret)
	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	_, err := verifier.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	token, err := GenerateToken("", "alice@example.com", "", testSecret, time.Hour)
	require.NoError(t, err)

	verifier := NewJWTVerifier(testSecret)
	_, err = verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyHonorsCancelledContext(t *testing.T) {
	token, err := GenerateToken("uid-1", "alice@example.com", "", testSecret, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verifier := NewJWTVerifier(testSecret)
	_, err = verifier.Verify(ctx, token)
	assert.Error(t, err)
}

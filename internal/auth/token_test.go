package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	dealerID := "dealer-7"
	user := &domain.User{
		ID:         "user-1",
		Role:       domain.RoleDealer,
		Department: "",
		DealerID:   &dealerID,
	}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleDealer, claims.Role)
	require.NotNil(t, claims.DealerID)
	assert.Equal(t, "dealer-7", *claims.DealerID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse battery staple"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestPasswordHashingClampsOutOfRangeCost(t *testing.T) {
	// Cost 0 is below bcrypt's minimum; hashing still succeeds on the
	// default cost instead of failing registration.
	hash, err := HashPassword("correct horse battery staple", 0)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse battery staple"))
}

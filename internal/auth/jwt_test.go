package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/ppestock/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, model.RoleManager, "Store keeper")
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, claims.Role)
	assert.Equal(t, "Store keeper", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejects(t *testing.T) {
	token, err := GenerateToken("secret1", model.RoleAdmin, "")
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.Error(t, err, "wrong secret")
	_, err = ValidateToken("secret", "not-a-token")
	assert.Error(t, err, "malformed token")
}

func TestTokenExpiry(t *testing.T) {
	token, err := GenerateToken("test", model.RoleUser, "")
	require.NoError(t, err)
	claims, err := ValidateToken("test", token)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(TokenExpiry), claims.ExpiresAt.Time, 5*time.Second)
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err, "short password")

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrBadPassword)
}

func TestPasswordHolderSet(t *testing.T) {
	first, err := HashPassword("first password")
	require.NoError(t, err)
	second, err := HashPassword("second password")
	require.NoError(t, err)

	p := NewPassword(first)
	require.NoError(t, p.Check("first password"))

	p.Set(second)
	assert.ErrorIs(t, p.Check("first password"), ErrBadPassword)
	assert.NoError(t, p.Check("second password"))
}

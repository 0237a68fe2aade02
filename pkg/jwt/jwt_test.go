package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "company-1", jwt.RoleStorekeeper, "stock-ledger", 5)
	require.NoError(t, err)

	userID, companyID, role, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "company-1", companyID)
	assert.Equal(t, jwt.RoleStorekeeper, role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "company-1", jwt.RoleAdmin, "stock-ledger", 5)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate(secret, "user-1", "company-1", jwt.RoleAdmin, "stock-ledger", -1)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u", "c", jwt.RoleAdmin, "i", 5)
	assert.Error(t, err)
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, jwt.IsKnownRole(jwt.RoleAuditor))
	assert.False(t, jwt.IsKnownRole("vendedor"))
}

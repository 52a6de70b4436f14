package crypto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	password := "TestPass123"

	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	other, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")
}

func TestCheckPassword(t *testing.T) {
	password := "TestPass123"

	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(password, hash), "correct password should pass")
	assert.Error(t, CheckPassword("WrongPass123", hash), "wrong password should fail")
	assert.Error(t, CheckPassword(password, "not-a-hash"), "garbage hash should fail")
}

func TestIsStrong(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"Valid password", "Secret123", true},
		{"Too short", "Sec1", false},
		{"No uppercase", "secret123", false},
		{"No lowercase", "SECRET123", false},
		{"No digit", "SecretPass", false},
		{"Minimum valid", "Secr3tXy", true},
		{"Contains password", "MyPassword123", false},
		{"Long valid", "MyVeryLongSecret123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsStrong(tt.password))
		})
	}
}

func TestRegisterPasswordValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterPasswordValidator(v))
	require.NoError(t, RegisterPasswordValidator(v), "second registration is a no-op")

	type req struct {
		Password string `validate:"password"`
	}

	assert.NoError(t, v.Struct(req{Password: "Secret123"}))
	assert.Error(t, v.Struct(req{Password: "weak"}))
}

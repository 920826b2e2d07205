package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastPasswords() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestPasswordService_AcceptsSignupPasswords(t *testing.T) {
	passwords := []struct {
		name  string
		input string
	}{
		{"minimum signup length", "abc123"},
		{"spaces inside", "correct horse battery"},
		{"symbols", "ph0t0!$#&*"},
		{"non-ascii", "фото-照片-📷"},
		{"exactly 72 bytes", strings.Repeat("p", MaxPasswordBytes)},
	}

	ps := fastPasswords()
	for _, tc := range passwords {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.input)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(hash, "$2"), "not a bcrypt hash: %q", hash)
			assert.NotContains(t, hash, tc.input)
			assert.NoError(t, ps.Verify(hash, tc.input))
		})
	}
}

func TestPasswordService_RejectsOver72Bytes(t *testing.T) {
	_, err := fastPasswords().Hash(strings.Repeat("p", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPasswordService_SaltsEveryHash(t *testing.T) {
	ps := fastPasswords()

	first, err := ps.Hash("mountain-lake")
	require.NoError(t, err)
	second, err := ps.Hash("mountain-lake")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, ps.Verify(first, "mountain-lake"))
	assert.NoError(t, ps.Verify(second, "mountain-lake"))
}

func TestPasswordService_Verify(t *testing.T) {
	ps := fastPasswords()
	hash, err := ps.Hash("mountain-lake")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		attempt  string
		mismatch bool
	}{
		{name: "wrong password", hash: hash, attempt: "mountain-lak", mismatch: true},
		{name: "case differs", hash: hash, attempt: "Mountain-Lake", mismatch: true},
		{name: "empty attempt", hash: hash, attempt: "", mismatch: true},
		{name: "corrupt stored hash", hash: "plaintext-in-db", attempt: "mountain-lake"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ps.Verify(tc.hash, tc.attempt)
			require.Error(t, err)
			if tc.mismatch {
				assert.ErrorIs(t, err, ErrPasswordMismatch)
			} else {
				assert.NotErrorIs(t, err, ErrPasswordMismatch, "a broken hash is an internal error, not a bad login")
			}
		})
	}
}

func TestNewPasswordService_UsesProductionCost(t *testing.T) {
	hash, err := NewPasswordService().Hash("x")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, defaultCost, cost)
}

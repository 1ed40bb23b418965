package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 64)

	hash, err := hasher.Hash(salt, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, hasher.Compare(hash, salt, "correct horse battery staple"))
	require.Error(t, hasher.Compare(hash, salt, "wrong password"))
	require.Error(t, hasher.Compare(hash, "other-salt", "correct horse battery staple"))
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	// The SHA256 pre-digest keeps inputs under bcrypt's 72-byte limit, so
	// passwords longer than that must still round-trip.
	hasher := NewBcryptHasher(bcrypt.MinCost)

	long := make([]byte, 200)
	for i := range long {
		long[i] = byte('a' + i%26)
	}

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)
	hash, err := hasher.Hash(salt, string(long))
	require.NoError(t, err)
	require.NoError(t, hasher.Compare(hash, salt, string(long)))
}

func TestBcryptHasher_SaltsDiffer(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	a, err := hasher.GenerateSalt()
	require.NoError(t, err)
	b, err := hasher.GenerateSalt()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

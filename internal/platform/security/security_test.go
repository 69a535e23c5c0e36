package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps argon2 cheap enough for unit tests.
var fastParams = Params{Algorithm: AlgorithmArgon2id, ArgonTime: 1, ArgonMemoryKiB: 1024, ArgonThreads: 1, BcryptCost: 4}

func TestGenerateSalt(t *testing.T) {
	t.Parallel()

	a, err := GenerateSalt()
	require.NoError(t, err)
	b, err := GenerateSalt()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, SaltSize)
	assert.NotEqual(t, a, b, "salts must not repeat")
}

func TestSaltPassword(t *testing.T) {
	t.Parallel()

	got := SaltPassword("Pa$$word", "salt")
	raw, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "Pa$$wordsalt", string(raw))
	assert.Equal(t, got, SaltPassword("Pa$$word", "salt"))
	assert.NotEqual(t, got, SaltPassword("Pa$$word", "other"))
}

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{AlgorithmArgon2id, AlgorithmBcrypt} {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()
			p := fastParams
			p.Algorithm = alg
			h, err := NewHasher(p)
			require.NoError(t, err)

			salted := SaltPassword("Pa$$word@1234!", "salt")
			hash, err := h.Hash(salted)
			require.NoError(t, err)
			assert.NotContains(t, hash, salted)

			ok, err := h.Verify(hash, salted)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify(hash, SaltPassword("wrong", "salt"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_VerifiesOtherAlgorithm(t *testing.T) {
	t.Parallel()

	bc := fastParams
	bc.Algorithm = AlgorithmBcrypt
	old, err := NewHasher(bc)
	require.NoError(t, err)
	hash, err := old.Hash("secret")
	require.NoError(t, err)

	current, err := NewHasher(fastParams)
	require.NoError(t, err)
	ok, err := current.Verify(hash, "secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_LongInputWithBcrypt(t *testing.T) {
	t.Parallel()

	h := &BcryptHasher{Cost: 4}
	long := strings.Repeat("x", 200)
	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(hash, long[:199]+"y")
	require.NoError(t, err)
	assert.False(t, ok, "bytes beyond 72 must still matter")
}

func TestHasher_Malformed(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(fastParams)
	require.NoError(t, err)

	for _, hash := range []string{"", "plain", "$argon2id$v=19$bad", "$argon2id$v=19$m=1,t=1,p=1$!!$!!"} {
		ok, err := h.Verify(hash, "x")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformedHash, hash)
	}
}

func TestNewHasher_UnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(Params{Algorithm: "md5"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestHasher_DummyHash(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(fastParams)
	require.NoError(t, err)

	ok, err := h.Verify(h.DummyHash(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

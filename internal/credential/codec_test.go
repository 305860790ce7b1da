package credential_test

import (
	"strings"
	"testing"

	"roompad/backend/internal/config"
	"roompad/backend/internal/credential"
	"roompad/backend/internal/credential/credentialtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low cost keeps the suite fast; the record format does not depend on N.
func newCodec() *credential.Scrypt {
	return credentialtest.Fast()
}

func TestHash_VerifiesOriginalPassword(t *testing.T) {
	codec := newCodec()

	for _, password := range []string{"secret", "", "pässwörd 🔒", strings.Repeat("x", 1000)} {
		record, err := codec.Hash(password)
		require.NoError(t, err)
		assert.True(t, codec.Verify(password, record), "password %q should verify", password)
	}
}

func TestHash_RejectsOtherPassword(t *testing.T) {
	codec := newCodec()

	record, err := codec.Hash("secret")
	require.NoError(t, err)

	assert.False(t, codec.Verify("Secret", record))
	assert.False(t, codec.Verify("secret ", record))
	assert.False(t, codec.Verify("", record))
}

func TestHash_FreshSaltEachTime(t *testing.T) {
	codec := newCodec()

	first, err := codec.Hash("secret")
	require.NoError(t, err)
	second, err := codec.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ")
	assert.True(t, codec.Verify("secret", first))
	assert.True(t, codec.Verify("secret", second))
}

func TestHash_RecordFormat(t *testing.T) {
	record, err := newCodec().Hash("secret")
	require.NoError(t, err)

	parts := strings.Split(record, ":")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], config.SaltBytes*2, "salt is hex encoded")
	assert.Len(t, parts[1], config.DerivedKeyBytes*2, "derived key is hex encoded")
}

func TestVerify_MalformedRecordsReturnFalse(t *testing.T) {
	codec := newCodec()
	valid, err := codec.Hash("secret")
	require.NoError(t, err)
	salt, key, _ := strings.Cut(valid, ":")

	tests := []struct {
		name   string
		record string
	}{
		{name: "empty", record: ""},
		{name: "no separator", record: salt + key},
		{name: "empty salt", record: ":" + key},
		{name: "empty key", record: salt + ":"},
		{name: "non-hex salt", record: "zz" + salt[2:] + ":" + key},
		{name: "non-hex key", record: salt + ":" + "zz" + key[2:]},
		{name: "short key", record: salt + ":" + key[:32]},
		{name: "long key", record: salt + ":" + key + "00"},
		{name: "extra separator", record: salt + ":" + key + ":00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, codec.Verify("secret", tt.record))
			})
		})
	}
}

func TestVerify_DifferentCostDoesNotMatch(t *testing.T) {
	record, err := credentialtest.Fast().Hash("secret")
	require.NoError(t, err)

	other := &credential.Scrypt{N: credentialtest.FastN * 2, R: config.ScryptR, P: config.ScryptP}
	assert.False(t, other.Verify("secret", record))
}

func TestNewScrypt_UsesFixedProductionCost(t *testing.T) {
	codec := credential.NewScrypt()

	assert.Equal(t, config.DefaultScryptN, codec.N)
	assert.Equal(t, config.ScryptR, codec.R)
	assert.Equal(t, config.ScryptP, codec.P)
	assert.GreaterOrEqual(t, codec.N, 16384)
}

func TestNewScrypt_RecordsVerifyAcrossInstances(t *testing.T) {
	// Arrange
	record, err := credential.NewScrypt().Hash("secret")
	require.NoError(t, err)

	// Act
	ok := credential.NewScrypt().Verify("secret", record)

	// Assert
	assert.True(t, ok, "a restarted server must accept records it wrote earlier")
}

func BenchmarkHash_DefaultCost(b *testing.B) {
	codec := credential.NewScrypt()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Hash("secret")
	}
}

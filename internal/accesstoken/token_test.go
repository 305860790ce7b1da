package accesstoken_test

import (
	"testing"
	"time"

	"roompad/backend/internal/accesstoken"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const record = "00112233445566778899aabbccddeeff:abcdef"

func TestIssueAndValidate(t *testing.T) {
	issuer := accesstoken.NewIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("abc123", record)
	require.NoError(t, err)

	assert.NoError(t, issuer.Validate(token, "abc123", record))
}

func TestValidate_Rejections(t *testing.T) {
	issuer := accesstoken.NewIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("abc123", record)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		slug   string
		record string
	}{
		{name: "other room", token: token, slug: "zzz999", record: record},
		{name: "password rotated", token: token, slug: "abc123", record: "ffff:0000"},
		{name: "room unlocked", token: token, slug: "abc123", record: ""},
		{name: "empty token", token: "", slug: "abc123", record: record},
		{name: "garbage", token: "not.a.jwt", slug: "abc123", record: record},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, issuer.Validate(tt.token, tt.slug, tt.record), accesstoken.ErrInvalidToken)
		})
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := accesstoken.NewIssuer("secret-a", time.Hour).Issue("abc123", record)
	require.NoError(t, err)

	err = accesstoken.NewIssuer("secret-b", time.Hour).Validate(token, "abc123", record)

	assert.ErrorIs(t, err, accesstoken.ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	issuer := accesstoken.NewIssuer("test-secret", time.Minute)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer.Now = func() time.Time { return start }
	token, err := issuer.Issue("abc123", record)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return start.Add(2 * time.Minute) }

	assert.ErrorIs(t, issuer.Validate(token, "abc123", record), accesstoken.ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	issuer := accesstoken.NewIssuer("test-secret", time.Hour)
	claims := accesstoken.Claims{
		Fingerprint: accesstoken.Fingerprint(record),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc123",
			Issuer:    "roompad",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, issuer.Validate(unsigned, "abc123", record), accesstoken.ErrInvalidToken)
}

func TestFingerprint_DoesNotExposeRecord(t *testing.T) {
	fp := accesstoken.Fingerprint(record)

	assert.Len(t, fp, 32)
	assert.NotContains(t, record, fp)
	assert.Equal(t, fp, accesstoken.Fingerprint(record))
	assert.NotEqual(t, fp, accesstoken.Fingerprint(record+"x"))
}

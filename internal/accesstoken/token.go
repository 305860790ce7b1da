// Package accesstoken issues short-lived JWTs proving that the bearer knew a
// private room's password. A token is bound to the credential record it was
// issued against, so changing or removing the password revokes it.
package accesstoken

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"roompad/backend/internal/config"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid room access token")

// Claims carries the room slug as subject and a fingerprint of the record.
type Claims struct {
	Fingerprint string `json:"ph"`
	jwt.RegisteredClaims
}

// Issuer signs and validates room access tokens with HS256.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

// NewIssuer returns an Issuer using secret for signatures.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		Now:    time.Now,
	}
}

// Fingerprint is a short digest of a credential record. The record itself
// never goes into a token.
func Fingerprint(record string) string {
	sum := sha256.Sum256([]byte(record))
	return hex.EncodeToString(sum[:16])
}

// Issue returns a token for slug bound to record.
func (i *Issuer) Issue(slug, record string) (string, error) {
	now := i.Now()
	claims := Claims{
		Fingerprint: Fingerprint(record),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   slug,
			Issuer:    config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign room token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry, subject and fingerprint.
func (i *Issuer) Validate(tokenString, slug, record string) error {
	if tokenString == "" || record == "" {
		return ErrInvalidToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TokenIssuer),
		jwt.WithSubject(slug),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.Now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(Fingerprint(record))) != 1 {
		return ErrInvalidToken
	}
	return nil
}

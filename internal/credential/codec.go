// Package credential turns room passwords into salted scrypt records and
// checks passwords against them.
//
// A record is "<saltHex>:<derivedKeyHex>". Both halves are hex so the colon
// can never appear inside either of them.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"roompad/backend/internal/config"

	"golang.org/x/crypto/scrypt"
)

const separator = ":"

// Codec hashes and verifies room passwords.
type Codec interface {
	Hash(password string) (string, error)
	Verify(password, record string) bool
}

// Scrypt is the scrypt-backed Codec. Records do not carry the cost
// parameters, so every instance that reads a record must use the parameters
// it was written with.
type Scrypt struct {
	N, R, P int
}

// NewScrypt returns the codec used for stored room credentials. Its cost is
// fixed: changing it would make every existing record unverifiable.
func NewScrypt() *Scrypt {
	return &Scrypt{N: config.DefaultScryptN, R: config.ScryptR, P: config.ScryptP}
}

// Hash derives a record for password with a fresh random salt.
func (s *Scrypt) Hash(password string) (string, error) {
	salt := make([]byte, config.SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	key, err := s.derive(password, saltHex)
	if err != nil {
		return "", err
	}
	return saltHex + separator + hex.EncodeToString(key), nil
}

// Verify reports whether password matches record. Malformed records never
// match.
func (s *Scrypt) Verify(password, record string) bool {
	saltHex, keyHex, ok := strings.Cut(record, separator)
	if !ok || saltHex == "" || keyHex == "" {
		return false
	}
	if _, err := hex.DecodeString(saltHex); err != nil {
		return false
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) != config.DerivedKeyBytes {
		return false
	}

	actual, err := s.derive(password, saltHex)
	if err != nil || len(actual) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

// derive keys off the hex salt string rather than the raw bytes so records
// written by earlier deployments keep verifying.
func (s *Scrypt) derive(password, saltHex string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(saltHex), s.N, s.R, s.P, config.DerivedKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Package credentialtest provides a low-cost scrypt codec for tests.
package credentialtest

import (
	"roompad/backend/internal/config"
	"roompad/backend/internal/credential"
)

// FastN is the cost used by Fast. It is far too low for stored credentials.
const FastN = 1024

// Fast returns a codec with the production record format and a low cost.
func Fast() *credential.Scrypt {
	return &credential.Scrypt{N: FastN, R: config.ScryptR, P: config.ScryptP}
}

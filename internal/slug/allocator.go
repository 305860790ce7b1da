// Package slug generates short room identifiers and picks one that is not
// in use yet.
package slug

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"roompad/backend/internal/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrTaken     = errors.New("slug already exists")
	ErrExhausted = errors.New("failed to generate unique slug")
)

// Lookup reports whether a slug is already used by a room.
type Lookup interface {
	Exists(ctx context.Context, slug string) (bool, error)
}

// GenerateCandidate returns length characters drawn uniformly from the
// lowercase alphanumeric alphabet. Slugs are not secrets, so math/rand is enough.
func GenerateCandidate(length int) string {
	if length <= 0 {
		length = config.SlugLength
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = config.SlugAlphabet[rand.IntN(len(config.SlugAlphabet))]
	}
	return string(b)
}

// Allocator picks unused slugs. The existence check and the later insert are
// not atomic; the repository's uniqueness constraint is the final guard.
type Allocator struct {
	Lookup   Lookup
	Generate func(length int) string
	Attempts int
}

// NewAllocator returns an Allocator with the default generator and attempt budget.
func NewAllocator(l Lookup) *Allocator {
	return &Allocator{
		Lookup:   l,
		Generate: GenerateCandidate,
		Attempts: config.SlugMaxAttempts,
	}
}

// Allocate returns requested when it is free, or a freshly generated slug
// when requested is empty.
func (a *Allocator) Allocate(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		exists, err := a.Lookup.Exists(ctx, requested)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", requested, err)
		}
		if exists {
			return "", ErrTaken
		}
		return requested, nil
	}

	for attempt := 1; attempt <= a.Attempts; attempt++ {
		candidate := a.Generate(config.SlugLength)
		exists, err := a.Lookup.Exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		logrus.WithFields(logrus.Fields{"slug": candidate, "attempt": attempt}).Warn("Generated slug already exists, retrying")
	}

	logrus.Errorf("Failed to generate a unique slug after %d attempts", a.Attempts)
	return "", ErrExhausted
}

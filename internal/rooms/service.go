// Package rooms decides who may read and write a room and computes the
// state each operation persists.
//
// Every operation works on a request-scoped copy fetched from the repository
// and writes back with a single repository call. Nothing is cached between
// requests and no lock is held while the repository or the credential codec
// is working.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roompad/backend/internal/accesstoken"
	"roompad/backend/internal/credential"
	"roompad/backend/internal/models"
	"roompad/backend/internal/slug"
	"roompad/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

// EventPublisher receives a notification after every successful write.
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, event models.RoomEvent) error
}

// Credential is what a caller presented to unlock a private room: a password,
// a room access token, or both. A nil Password means none was supplied.
type Credential struct {
	Password *string
	Token    string
}

// PasswordCredential wraps a plaintext password.
func PasswordCredential(password string) Credential {
	return Credential{Password: &password}
}

// IsZero reports whether nothing was supplied.
func (c Credential) IsZero() bool {
	return c.Password == nil && c.Token == ""
}

// Patch is a partial write. Nil fields are absent from the request.
type Patch struct {
	Content      *string
	LockPassword *string
	IsPrivate    *bool
}

// CreateInput carries the fields of an explicit create.
type CreateInput struct {
	Slug      string
	Content   string
	Password  string
	ExpiresIn *float64 // hours
	IP        string
}

// VerifyResult is the outcome of a password check. Token is set for private
// rooms when an access token issuer is configured.
type VerifyResult struct {
	Granted bool
	Token   string
}

// Service is the room access controller.
type Service struct {
	Repo   storage.RoomRepository
	Codec  credential.Codec
	Slugs  *slug.Allocator
	Tokens *accesstoken.Issuer
	Events EventPublisher
	Now    func() time.Time
}

// NewService wires a Service. tokens and events may be nil.
func NewService(repo storage.RoomRepository, codec credential.Codec, tokens *accesstoken.Issuer, events EventPublisher) *Service {
	return &Service{
		Repo:   repo,
		Codec:  codec,
		Slugs:  slug.NewAllocator(repo),
		Tokens: tokens,
		Events: events,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Read returns the room at slug, creating an empty public room when none
// exists yet. Private rooms require cred.
func (s *Service) Read(ctx context.Context, slug string, cred Credential, ip string) (*models.Room, error) {
	logCtx := logrus.WithField("slug", slug)

	room, err := s.Repo.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get room %q: %w", slug, err)
	}
	if room == nil {
		return s.createOnRead(ctx, slug, cred, ip)
	}

	if err := s.authorize(room, cred); err != nil {
		logCtx.WithError(err).Warn("Read denied")
		return nil, err
	}

	now := s.Now()
	if err := s.Repo.Touch(ctx, slug, now); err != nil {
		logCtx.WithError(err).Warn("Failed to refresh last access time")
	} else {
		room.LastAccessedAt = now
	}
	return room, nil
}

// createOnRead inserts a public room for a first read. Losing the insert race
// to a concurrent creator re-fetches once; the winner's room is then subject
// to the usual access checks, since the winner may have locked it.
func (s *Service) createOnRead(ctx context.Context, slug string, cred Credential, ip string) (*models.Room, error) {
	room := s.newRoom(slug, "", nil, nil, ip)
	err := s.Repo.Create(ctx, room)
	if err == nil {
		logrus.WithField("slug", slug).Info("Room created on first read")
		return room, nil
	}
	if !errors.Is(err, storage.ErrSlugTaken) {
		return nil, fmt.Errorf("create room %q on read: %w", slug, err)
	}

	existing, getErr := s.Repo.Get(ctx, slug)
	if getErr != nil {
		return nil, fmt.Errorf("re-fetch room %q after create race: %w", slug, getErr)
	}
	if existing == nil {
		return nil, fmt.Errorf("room %q missing after create race: %w", slug, err)
	}
	if err := s.authorize(existing, cred); err != nil {
		return nil, err
	}
	return existing, nil
}

// Create allocates a slug and stores a new room. A non-empty password makes
// the room private.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Room, error) {
	if in.ExpiresIn != nil && *in.ExpiresIn <= 0 {
		return nil, &ValidationError{Field: "expiresIn", Message: "must be a positive number of hours"}
	}

	roomSlug, err := s.Slugs.Allocate(ctx, in.Slug)
	switch {
	case errors.Is(err, slug.ErrTaken):
		return nil, ErrSlugTaken
	case errors.Is(err, slug.ErrExhausted):
		return nil, ErrAllocationExhausted
	case err != nil:
		return nil, fmt.Errorf("allocate slug: %w", err)
	}

	var hash *string
	if in.Password != "" {
		record, err := s.Codec.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = &record
	}

	var expiresAt *time.Time
	if in.ExpiresIn != nil {
		at := s.Now().Add(time.Duration(*in.ExpiresIn * float64(time.Hour)))
		expiresAt = &at
	}

	room := s.newRoom(roomSlug, in.Content, hash, expiresAt, in.IP)
	if err := s.Repo.Create(ctx, room); err != nil {
		if errors.Is(err, storage.ErrSlugTaken) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create room %q: %w", roomSlug, err)
	}

	logrus.WithFields(logrus.Fields{"slug": roomSlug, "private": room.IsPrivate}).Info("Room created")
	return room, nil
}

// Write applies patch to an existing room. Writes never create rooms.
// Patch fields apply in order: content, then lockPassword (which forces the
// room private), then isPrivate. isPrivate=false always clears the password,
// even when lockPassword is in the same patch.
func (s *Service) Write(ctx context.Context, slug string, patch Patch, cred Credential) (*models.Room, error) {
	logCtx := logrus.WithField("slug", slug)

	room, err := s.Repo.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get room %q: %w", slug, err)
	}
	if room == nil {
		return nil, ErrNotFound
	}

	if err := s.authorize(room, cred); err != nil {
		logCtx.WithError(err).Warn("Write denied")
		return nil, err
	}

	changes, err := s.changesFor(room, patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.Update(ctx, slug, changes)
	if err != nil {
		return nil, fmt.Errorf("update room %q: %w", slug, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	accessChanged := room.IsPrivate != updated.IsPrivate || room.Credential() != updated.Credential()
	if accessChanged {
		logCtx.WithField("private", updated.IsPrivate).Info("Room lock settings changed")
	}
	s.publish(ctx, updated, accessChanged)
	return updated, nil
}

// Verify checks password against the room without returning content.
// A wrong password is a negative result, not an error.
func (s *Service) Verify(ctx context.Context, slug, password string) (*VerifyResult, error) {
	room, err := s.Repo.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get room %q: %w", slug, err)
	}
	if room == nil {
		return nil, ErrNotFound
	}
	if !room.IsPrivate {
		return &VerifyResult{Granted: true}, nil
	}

	if !s.Codec.Verify(password, room.Credential()) {
		logrus.WithField("slug", slug).Warn("Password verification failed")
		return &VerifyResult{Granted: false}, nil
	}

	result := &VerifyResult{Granted: true}
	if s.Tokens != nil {
		token, err := s.Tokens.Issue(room.Slug, room.Credential())
		if err != nil {
			logrus.WithError(err).WithField("slug", slug).Error("Failed to issue room token")
		} else {
			result.Token = token
		}
	}
	return result, nil
}

// Authorize returns the room if cred grants read access. Unlike Read it
// never creates rooms.
func (s *Service) Authorize(ctx context.Context, slug string, cred Credential) (*models.Room, error) {
	room, err := s.Repo.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get room %q: %w", slug, err)
	}
	if room == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(room, cred); err != nil {
		return nil, err
	}
	return room, nil
}

// authorize is the single gate shared by reads and writes.
func (s *Service) authorize(room *models.Room, cred Credential) error {
	if !room.IsPrivate {
		return nil
	}
	if cred.IsZero() {
		return ErrCredentialRequired
	}
	if cred.Token != "" && s.Tokens != nil {
		if err := s.Tokens.Validate(cred.Token, room.Slug, room.Credential()); err == nil {
			return nil
		}
	}
	if cred.Password == nil {
		return ErrInvalidCredential
	}
	if !s.Codec.Verify(*cred.Password, room.Credential()) {
		return ErrInvalidCredential
	}
	return nil
}

func (s *Service) changesFor(room *models.Room, patch Patch) (storage.Changes, error) {
	var changes storage.Changes

	if patch.Content != nil {
		content := *patch.Content
		changes.Content = &content
	}

	if patch.LockPassword != nil && *patch.LockPassword != "" {
		record, err := s.Codec.Hash(*patch.LockPassword)
		if err != nil {
			return changes, fmt.Errorf("hash lock password: %w", err)
		}
		private := true
		changes.PasswordHash = &record
		changes.IsPrivate = &private
	}

	if patch.IsPrivate != nil {
		private := *patch.IsPrivate
		if private && changes.PasswordHash == nil && !room.HasCredential() {
			return changes, &ValidationError{Field: "lockPassword", Message: "a password is required to make a room private"}
		}
		changes.IsPrivate = &private
		if !private {
			changes.PasswordHash = nil
			changes.ClearPasswordHash = true
		}
	}

	return changes, nil
}

func (s *Service) newRoom(slug, content string, hash *string, expiresAt *time.Time, ip string) *models.Room {
	now := s.Now()
	room := &models.Room{
		Slug:           slug,
		Content:        content,
		IsPrivate:      hash != nil,
		PasswordHash:   hash,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		LastAccessedAt: now,
		UpdatedAt:      now,
	}
	if ip != "" {
		room.CreatedIP = &ip
	}
	return room
}

func (s *Service) publish(ctx context.Context, room *models.Room, accessChanged bool) {
	if s.Events == nil {
		return
	}
	event := models.NewRoomUpdatedEvent(room)
	event.AccessChanged = accessChanged
	if err := s.Events.PublishRoomEvent(ctx, event); err != nil {
		logrus.WithError(err).WithField("slug", room.Slug).Warn("Failed to publish room event")
	}
}

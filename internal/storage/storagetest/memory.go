// Package storagetest provides an in-memory RoomRepository for tests.
package storagetest

import (
	"context"
	"sync"
	"time"

	"roompad/backend/internal/models"
	"roompad/backend/internal/storage"
)

// Memory is a map-backed storage.RoomRepository. It copies rooms in and out
// so callers never share state with the store.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]models.Room
	now   func() time.Time

	Events []models.RoomEvent
}

var _ storage.RoomRepository = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]models.Room),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Get(_ context.Context, slug string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[slug]
	if !ok {
		return nil, nil
	}
	return clone(room), nil
}

func (m *Memory) Exists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[slug]
	return ok, nil
}

func (m *Memory) Create(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.Slug]; ok {
		return storage.ErrSlugTaken
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now()
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = room.CreatedAt
	}
	m.rooms[room.Slug] = *clone(*room)
	return nil
}

func (m *Memory) Update(_ context.Context, slug string, changes storage.Changes) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[slug]
	if !ok {
		return nil, nil
	}
	changes.Apply(&room)
	room.UpdatedAt = m.now()
	m.rooms[slug] = room
	return clone(room), nil
}

func (m *Memory) Touch(_ context.Context, slug string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[slug]; ok {
		room.LastAccessedAt = at
		m.rooms[slug] = room
	}
	return nil
}

func (m *Memory) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for slug, room := range m.rooms {
		if room.ExpiresAt != nil && room.ExpiresAt.Before(now) {
			delete(m.rooms, slug)
			deleted++
		}
	}
	return deleted, nil
}

// PublishRoomEvent records the event so tests can assert on it.
func (m *Memory) PublishRoomEvent(_ context.Context, event models.RoomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// PublishedEvents returns a copy of the recorded events.
func (m *Memory) PublishedEvents() []models.RoomEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.RoomEvent(nil), m.Events...)
}

// Put stores room as is, bypassing uniqueness checks.
func (m *Memory) Put(room models.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.Slug] = *clone(room)
}

func clone(room models.Room) *models.Room {
	out := room
	if room.PasswordHash != nil {
		hash := *room.PasswordHash
		out.PasswordHash = &hash
	}
	if room.ExpiresAt != nil {
		expires := *room.ExpiresAt
		out.ExpiresAt = &expires
	}
	if room.CreatedIP != nil {
		ip := *room.CreatedIP
		out.CreatedIP = &ip
	}
	return &out
}

package rooms_test

import (
	"context"
	"time"

	"roompad/backend/internal/models"
	"roompad/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of storage.RoomRepository for failure paths
// the in-memory store cannot produce.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, slug string) (*models.Room, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRepository) Exists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, slug string, changes storage.Changes) (*models.Room, error) {
	args := m.Called(ctx, slug, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRepository) Touch(ctx context.Context, slug string, at time.Time) error {
	args := m.Called(ctx, slug, at)
	return args.Error(0)
}

func (m *MockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roompad/backend/internal/config"
	"roompad/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrSlugTaken is returned by Create when a room with the same slug exists.
var ErrSlugTaken = errors.New("storage: slug already exists")

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// RoomRepository is the durable room table. Get and Update return a nil room
// and no error when the slug is unknown.
type RoomRepository interface {
	Get(ctx context.Context, slug string) (*models.Room, error)
	Exists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, slug string, changes Changes) (*models.Room, error)
	Touch(ctx context.Context, slug string, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service implements RoomRepository on PostgreSQL and room event pub/sub on Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil for tools that never publish.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Open connects to PostgreSQL through lib/pq. Unique violations are detected
// from *pq.Error in Create.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate creates or updates the rooms table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Room{}); err != nil {
		return fmt.Errorf("migrate rooms: %w", err)
	}
	return nil
}

// Get returns the room stored under slug.
func (s *Service) Get(ctx context.Context, slug string) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gorm: get room %q: %w", slug, err)
	}
	return &room, nil
}

// Exists reports whether slug is in use.
func (s *Service) Exists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by slug %q: %w", slug, err)
	}
	return count > 0, nil
}

// Create inserts room. A slug collision yields ErrSlugTaken.
func (s *Service) Create(ctx context.Context, room *models.Room) error {
	err := s.DB.WithContext(ctx).Create(room).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return fmt.Errorf("gorm: create room %q: %w", room.Slug, err)
}

// Update applies changes in a single statement and returns the stored room.
func (s *Service) Update(ctx context.Context, slug string, changes Changes) (*models.Room, error) {
	columns := changes.Columns()
	columns["updated_at"] = time.Now().UTC()

	result := s.DB.WithContext(ctx).Model(&models.Room{}).Where("slug = ?", slug).Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("gorm: update room %q: %w", slug, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.Get(ctx, slug)
}

// Touch refreshes last_accessed_at without bumping updated_at.
func (s *Service) Touch(ctx context.Context, slug string, at time.Time) error {
	err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("slug = ?", slug).
		UpdateColumn("last_accessed_at", at).Error
	if err != nil {
		return fmt.Errorf("gorm: touch room %q: %w", slug, err)
	}
	return nil
}

// DeleteExpired removes rooms whose expires_at lies before now.
func (s *Service) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&models.Room{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete expired rooms: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PublishRoomEvent publishes event on the room's Redis channel.
func (s *Service) PublishRoomEvent(ctx context.Context, event models.RoomEvent) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, RoomChannel(event.Slug), payload).Err(); err != nil {
		logrus.WithError(err).WithField("slug", event.Slug).Error("Failed to publish room event")
		return err
	}
	return nil
}

// SubscribeRoomEvents subscribes to the channels of all rooms.
func (s *Service) SubscribeRoomEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, config.RoomEventChannelPrefix+"*")
}

// RoomChannel is the Redis channel carrying events for slug.
func RoomChannel(slug string) string {
	return config.RoomEventChannelPrefix + slug
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

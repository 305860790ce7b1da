package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"roompad/backend/internal/config"
	"roompad/backend/internal/models"
	"roompad/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var errRoomNotFound = errors.New("room not found")

// eventPublisher announces operator changes to connected subscribers.
type eventPublisher interface {
	PublishRoomEvent(ctx context.Context, event models.RoomEvent) error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <show|unlock|purge-expired> [slug]")
		os.Exit(1)
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := storage.Open(dbCfg.URL)
	if err != nil {
		logrus.Fatalf("Failed to connect database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Only unlock notifies subscribers, so only unlock needs Redis.
	var rdb *redis.Client
	if os.Args[1] == "unlock" {
		rdb = connectRedis(ctx)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	storageSvc := storage.NewStorageService(db, rdb)

	command := os.Args[1]
	switch command {
	case "show", "unlock":
		if len(os.Args) != 3 {
			fmt.Printf("Usage: admin %s <slug>\n", command)
			os.Exit(1)
		}
		slug := os.Args[2]
		if command == "show" {
			err = showRoom(ctx, os.Stdout, storageSvc, slug)
		} else {
			err = unlockRoom(ctx, storageSvc, storageSvc, slug)
		}
		if err != nil {
			logrus.Fatalf("Error running %s for room %s: %v", command, slug, err)
		}
		if command == "unlock" {
			fmt.Printf("Room %s is now public.\n", slug)
		}
	case "purge-expired":
		n, err := purgeExpired(ctx, storageSvc, time.Now().UTC())
		if err != nil {
			logrus.Fatalf("Error purging expired rooms: %v", err)
		}
		fmt.Printf("Deleted %d expired rooms.\n", n)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// showRoom prints room metadata. The credential record is never printed.
func showRoom(ctx context.Context, w io.Writer, s storage.RoomRepository, slug string) error {
	room, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if room == nil {
		return errRoomNotFound
	}

	expires := "never"
	if room.ExpiresAt != nil {
		expires = room.ExpiresAt.Format(time.RFC3339)
	}
	createdIP := "-"
	if room.CreatedIP != nil {
		createdIP = *room.CreatedIP
	}
	fmt.Fprintf(w, "slug:           %s\n", room.Slug)
	fmt.Fprintf(w, "private:        %t\n", room.IsPrivate)
	fmt.Fprintf(w, "has password:   %t\n", room.HasCredential())
	fmt.Fprintf(w, "content bytes:  %d\n", len(room.Content))
	fmt.Fprintf(w, "created at:     %s\n", room.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "updated at:     %s\n", room.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "last accessed:  %s\n", room.LastAccessedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "expires at:     %s\n", expires)
	fmt.Fprintf(w, "created ip:     %s\n", createdIP)
	return nil
}

// connectRedis returns nil when Redis is not reachable. The unlock still
// applies; connected clients just learn about it on their next read.
func connectRedis(ctx context.Context) *redis.Client {
	redisCfg, err := config.LoadRedis()
	if err != nil {
		logrus.WithError(err).Warn("Failed to load Redis configuration, subscribers will not be notified")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.RedisAddr,
		Password: redisCfg.RedisPassword,
		DB:       redisCfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, subscribers will not be notified")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// unlockRoom is the operator reset for a forgotten password. Subscribers are
// told the room is public; a failed notification does not undo the unlock.
func unlockRoom(ctx context.Context, s storage.RoomRepository, events eventPublisher, slug string) error {
	public := false
	room, err := s.Update(ctx, slug, storage.Changes{IsPrivate: &public, ClearPasswordHash: true})
	if err != nil {
		return err
	}
	if room == nil {
		return errRoomNotFound
	}
	logCtx := logrus.WithField("slug", slug)
	logCtx.Warn("Room unlocked by operator")

	event := models.NewRoomUpdatedEvent(room)
	event.AccessChanged = true
	if err := events.PublishRoomEvent(ctx, event); err != nil {
		logCtx.WithError(err).Warn("Failed to publish room event")
	}
	return nil
}

func purgeExpired(ctx context.Context, s storage.RoomRepository, now time.Time) (int64, error) {
	n, err := s.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	logrus.WithField("deleted", n).Info("Expired rooms purged")
	return n, nil
}

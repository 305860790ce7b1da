// Package roomhub fans room change events out to connected subscribers.
package roomhub

import (
	"context"
	"encoding/json"
	"sync"

	"roompad/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Subscriber opens the Redis subscription carrying events for every room.
type Subscriber interface {
	SubscribeRoomEvents(ctx context.Context) *redis.PubSub
}

// Manager tracks subscribers per room and delivers events published by any
// server instance.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventsCh     chan models.RoomEvent

	Subscriber Subscriber

	done chan struct{}
}

// NewManager returns a Manager. sub may be nil when events only arrive
// through EventsCh.
func NewManager(sub Subscriber) *Manager {
	return &Manager{
		clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventsCh:     make(chan models.RoomEvent, 64),
		Subscriber:   sub,
		done:         make(chan struct{}),
	}
}

// Run dispatches until ctx is cancelled, then closes every client.
func (m *Manager) Run(ctx context.Context) {
	defer m.shutdown()

	if m.Subscriber != nil {
		m.StartPubSubListener(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.RegisterCh:
			m.mu.Lock()
			m.clients[client.GetClientID()] = client
			m.mu.Unlock()
			logrus.WithFields(logrus.Fields{
				"client_id": client.GetClientID(),
				"slug":      client.GetSlug(),
			}).Debug("Event subscriber registered")

		case client := <-m.UnregisterCh:
			m.remove(client)

		case event := <-m.EventsCh:
			m.dispatch(event)
		}
	}
}

// StartPubSubListener forwards Redis room events into EventsCh.
func (m *Manager) StartPubSubListener(ctx context.Context) {
	pubsub := m.Subscriber.SubscribeRoomEvents(ctx)
	if _, err := pubsub.Receive(ctx); err != nil {
		logrus.WithError(err).Error("Failed to subscribe to room events")
		_ = pubsub.Close()
		return
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.RoomEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logrus.WithError(err).WithField("channel", msg.Channel).Warn("Dropping malformed room event")
					continue
				}
				select {
				case m.EventsCh <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Register adds client unless the Manager has stopped.
func (m *Manager) Register(client Client) bool {
	select {
	case m.RegisterCh <- client:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes client. It never blocks after the Manager has stopped.
func (m *Manager) Unregister(client Client) {
	select {
	case m.UnregisterCh <- client:
	case <-m.done:
	}
}

// ClientCount returns the number of subscribers watching slug.
func (m *Manager) ClientCount(slug string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.clients {
		if c.GetSlug() == slug {
			n++
		}
	}
	return n
}

// HasClient reports whether a client with id is registered.
func (m *Manager) HasClient(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[id]
	return ok
}

// dispatch queues event for every subscriber of its room. When the event
// revokes subscriptions, each subscriber is closed after the event is
// queued so it still learns why it was disconnected.
func (m *Manager) dispatch(event models.RoomEvent) {
	m.mu.RLock()
	var slow, revoked []Client
	for _, client := range m.clients {
		if client.GetSlug() != event.Slug {
			continue
		}
		select {
		case client.GetSendChannel() <- event:
			if event.RevokesSubscriptions() {
				revoked = append(revoked, client)
			}
		default:
			slow = append(slow, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range slow {
		logrus.WithField("client_id", client.GetClientID()).Warn("Event subscriber too slow, disconnecting")
		m.remove(client)
	}
	if len(revoked) > 0 {
		logrus.WithFields(logrus.Fields{"slug": event.Slug, "clients": len(revoked)}).Info("Room access changed, closing subscriptions")
	}
	for _, client := range revoked {
		m.remove(client)
	}
}

func (m *Manager) remove(client Client) {
	m.mu.Lock()
	_, ok := m.clients[client.GetClientID()]
	delete(m.clients, client.GetClientID())
	m.mu.Unlock()
	if ok {
		client.Close()
	}
}

func (m *Manager) shutdown() {
	close(m.done)
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]Client)
	m.mu.Unlock()
	for _, client := range clients {
		client.Close()
	}
	logrus.WithField("clients", len(clients)).Info("Room hub stopped")
}

package roomhub_test

import (
	"sync"

	"roompad/backend/internal/models"
)

type MockClient struct {
	id          string
	slug        string
	RecvChannel chan models.RoomEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(id, slug string, buffer int) *MockClient {
	return &MockClient{
		id:          id,
		slug:        slug,
		RecvChannel: make(chan models.RoomEvent, buffer),
	}
}

func (c *MockClient) GetClientID() string { return c.id }

func (c *MockClient) GetSlug() string { return c.slug }

func (c *MockClient) GetSendChannel() chan<- models.RoomEvent { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

package roomhub

import "roompad/backend/internal/models"

// Client is one subscriber to a room's change events.
type Client interface {
	// GetClientID returns an identifier unique to this connection.
	GetClientID() string
	// GetSlug returns the room the client watches.
	GetSlug() string

	// GetSendChannel returns the channel the Manager delivers events on.
	GetSendChannel() chan<- models.RoomEvent

	// Run starts the client's pumps.
	Run()
	// Close releases the client. It must be safe to call more than once.
	Close()
}

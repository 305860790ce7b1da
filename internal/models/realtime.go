package models

import "time"

const RoomEventUpdated = "room_updated"

// RoomEvent tells subscribers that a room changed. It carries no
// content. Clients re-read the room through the normal access checks.
type RoomEvent struct {
	Type      string    `json:"type"`
	Slug      string    `json:"slug"`
	IsPrivate bool      `json:"isPrivate"`
	UpdatedAt time.Time `json:"updatedAt"`
	// AccessChanged is set when the write changed the privacy flag or the
	// stored credential.
	AccessChanged bool `json:"accessChanged,omitempty"`
}

// RevokesSubscriptions reports whether existing subscribers must
// re-authenticate. Subscriptions were checked against the old credential.
func (e RoomEvent) RevokesSubscriptions() bool {
	return e.AccessChanged && e.IsPrivate
}

// NewRoomUpdatedEvent builds the event published after a successful write.
func NewRoomUpdatedEvent(r *Room) RoomEvent {
	return RoomEvent{
		Type:      RoomEventUpdated,
		Slug:      r.Slug,
		IsPrivate: r.IsPrivate,
		UpdatedAt: r.UpdatedAt,
	}
}

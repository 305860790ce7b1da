package models

import "time"

// Room is a shared text document addressed by its slug.
// PasswordHash and CreatedIP never leave the server; clients get a RoomView.
type Room struct {
	// Slug is the immutable, globally unique room identifier.
	Slug string `gorm:"primaryKey;type:text" json:"slug"`
	// Content is the text payload. Writes replace it wholesale.
	Content string `gorm:"type:text;not null" json:"content"`
	// IsPrivate requires a correct password for reads and writes.
	IsPrivate bool `gorm:"not null" json:"isPrivate"`
	// PasswordHash is the "<saltHex>:<keyHex>" credential record, nil for public rooms.
	PasswordHash *string `gorm:"type:text" json:"-"`
	// ExpiresAt is recorded at creation and enforced by the admin purge job.
	ExpiresAt *time.Time `gorm:"index" json:"expiresAt"`

	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// CreatedIP is a write-once audit field.
	CreatedIP *string `gorm:"type:text" json:"-"`
}

// Credential returns the stored credential record, or "" when none is set.
func (r *Room) Credential() string {
	if r.PasswordHash == nil {
		return ""
	}
	return *r.PasswordHash
}

// HasCredential reports whether a non-empty credential record is stored.
func (r *Room) HasCredential() bool {
	return r.Credential() != ""
}

// View returns the client-facing representation of the room.
func (r *Room) View() RoomView {
	return RoomView{
		Slug:           r.Slug,
		Content:        r.Content,
		IsPrivate:      r.IsPrivate,
		ExpiresAt:      r.ExpiresAt,
		CreatedAt:      r.CreatedAt,
		LastAccessedAt: r.LastAccessedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RoomView is the JSON body returned for a granted read or write.
type RoomView struct {
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	IsPrivate      bool       `json:"isPrivate"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastAccessedAt time.Time  `json:"lastAccessedAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

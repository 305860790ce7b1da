package storage

import "roompad/backend/internal/models"

// Changes is a partial room update. Nil fields are left untouched.
// ClearPasswordHash sets the hash to NULL and takes precedence over PasswordHash.
type Changes struct {
	Content           *string
	IsPrivate         *bool
	PasswordHash      *string
	ClearPasswordHash bool
}

// Columns returns the column map handed to gorm's Updates.
func (c Changes) Columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if c.Content != nil {
		columns["content"] = *c.Content
	}
	if c.IsPrivate != nil {
		columns["is_private"] = *c.IsPrivate
	}
	if c.ClearPasswordHash {
		columns["password_hash"] = nil
	} else if c.PasswordHash != nil {
		columns["password_hash"] = *c.PasswordHash
	}
	return columns
}

// Apply mutates room the same way Columns would in the database.
func (c Changes) Apply(room *models.Room) {
	if c.Content != nil {
		room.Content = *c.Content
	}
	if c.IsPrivate != nil {
		room.IsPrivate = *c.IsPrivate
	}
	if c.ClearPasswordHash {
		room.PasswordHash = nil
	} else if c.PasswordHash != nil {
		hash := *c.PasswordHash
		room.PasswordHash = &hash
	}
}

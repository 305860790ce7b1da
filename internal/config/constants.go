package config

import "time"

const (
	// Slugs
	SlugLength      = 6
	SlugAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	SlugMaxAttempts = 5
	SlugMaxLength   = 64

	// Credentials
	PasswordHeader  = "x-room-password"
	SaltBytes       = 16
	DerivedKeyBytes = 64
	DefaultScryptN  = 16384
	ScryptR         = 8
	ScryptP         = 1

	// Room access tokens
	TokenIssuer = "roompad"

	// Room events
	RoomEventChannelPrefix = "room:"
	EventClientBuffer      = 16
	EventWriteWait         = 10 * time.Second
	EventPongWait          = 60 * time.Second
	EventPingPeriod        = (EventPongWait * 9) / 10
	EventMaxMessageSize    = 512
)

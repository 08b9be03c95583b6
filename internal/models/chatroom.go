package models

import "time"

// ChatRoom represents a conversation between exactly one requester and one
// provider, scoped to a single trading-option tag. The participant pair is
// immutable once the room exists; IsActive soft-closes the room.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey"`
	// RequesterID is the client-side user who opened the room.
	RequesterID string `gorm:"index"`
	// ProviderID is the portal-owning party.
	ProviderID string `gorm:"index"`
	// OptionTag is the trading-option topic the room is scoped to.
	OptionTag string
	// IsActive indicates whether the room is currently open.
	IsActive bool
	// StartedAt is the timestamp when the room was created.
	StartedAt time.Time
	// EndedAt is the timestamp when the room was closed.
	EndedAt time.Time
}

// Counterpart returns the other participant of the room, or "" when the
// given user is not a participant (or when sender and counterpart would be
// the same identity, which two-party rooms rule out).
func (r *ChatRoom) Counterpart(userID string) string {
	switch userID {
	case r.RequesterID:
		return r.ProviderID
	case r.ProviderID:
		return r.RequesterID
	}
	return ""
}

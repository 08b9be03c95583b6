package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // required for pq.StringArray
	"gorm.io/gorm"
)

// User represents a portal account: either a requester (client-side trader)
// or a provider (portal-owning party). Only the fields the notification
// pipeline needs are modelled here; profile and billing data live in the
// application shell.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	DisplayName string `gorm:"type:text;not null"`
	Email       string `gorm:"uniqueIndex"`
	// TelegramChatID is set once the user has linked the alert bot. Empty
	// means Telegram dispatch is unavailable for this user.
	TelegramChatID string
	// IsProvider marks the portal-owning side of a room.
	IsProvider bool
	// NotifyChannels lists the outbound alert channels the user opted into,
	// e.g. {"email"} or {"email", "telegram"}.
	NotifyChannels pq.StringArray `gorm:"type:text[]"`
}

// BeforeCreate is a GORM hook which generates a new UUID for the user
// if the ID has not been set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

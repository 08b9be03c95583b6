package models

import "time"

// EmailNotification is one row of the append-only notification log. The
// pipeline only ever inserts and reads it: "when was this (recipient, room)
// pair last emailed" for the cooldown rule and "how many emails since local
// midnight" for the daily quota. Retention is an external concern.
type EmailNotification struct {
	ID          uint   `gorm:"primarykey"`
	RecipientID string `gorm:"index:idx_recipient_room;index:idx_recipient_sent"`
	RoomID      string `gorm:"type:uuid;index:idx_recipient_room"`
	// Channel records which dispatcher delivered the digest ("email",
	// "telegram"). Informational only; cooldown and quota count all channels.
	Channel string
	SentAt  time.Time `gorm:"index:idx_recipient_sent"`
}

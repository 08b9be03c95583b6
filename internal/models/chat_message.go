package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attachment kinds accepted at the transport boundary.
const (
	AttachmentKindImage = "image"
	AttachmentKindFile  = "file"
)

// Attachment is one structured attachment carried by a chat message.
type Attachment struct {
	Kind string `json:"kind"` // "image" or "file"
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// ChatMessage is a saved chat message. The embedded gorm.Model provides ID,
// CreatedAt, UpdatedAt, and DeletedAt, which serve as the durable message ID
// and server timestamp. Rows are immutable after creation except for IsRead,
// which only ever transitions false to true.
type ChatMessage struct {
	gorm.Model

	// RoomID is the identifier of the chat room where the message was sent.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the ID of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// Content is the free-text body of the message.
	Content string `gorm:"type:text;not null"`
	// Attachments is the optional attachment list, stored as JSON.
	Attachments datatypes.JSON `gorm:"type:json"`
	// IsRead is set once any participant other than the sender reads the room.
	IsRead bool `gorm:"default:false;index"`
}

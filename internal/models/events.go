package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Inbound event types accepted over the socket.
const (
	EventSendMessage = "send_message"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventTyping      = "typing"
	EventMarkRead    = "mark_read"
	EventHeartbeat   = "heartbeat"
)

// Outbound wire types.
const (
	WireMessage      = "message"
	WireTyping       = "typing"
	WireMessagesRead = "messages_read"
	WireSystem       = "system"
)

// WireMessageEvent is the payload broadcast to room peers. For persisted
// messages ID carries the database row ID; when the store is unavailable a
// locally generated ID is used so connected peers still see the message.
type WireMessageEvent struct {
	Type        string       `json:"type"`
	ID          string       `json:"id"`
	RoomID      string       `json:"room_id"`
	SenderID    string       `json:"sender_id"`
	SenderName  string       `json:"sender_name"`
	Content     string       `json:"content,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// InboundEvent is implemented by every decoded socket event. Validate runs
// at the transport boundary, before the event reaches the typed handlers.
type InboundEvent interface {
	Validate() error
}

type SendMessageEvent struct {
	RoomID      string       `json:"room_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
}

type JoinRoomEvent struct {
	RoomID string `json:"room_id"`
}

type LeaveRoomEvent struct {
	RoomID string `json:"room_id"`
}

type TypingEvent struct {
	RoomID string `json:"room_id"`
}

type MarkReadEvent struct {
	RoomID string `json:"room_id"`
}

type HeartbeatEvent struct{}

func (e SendMessageEvent) Validate() error {
	if e.RoomID == "" {
		return errors.New("send_message requires room_id")
	}
	if e.Content == "" && len(e.Attachments) == 0 {
		return errors.New("send_message requires content or attachments")
	}
	for _, a := range e.Attachments {
		if a.Kind != AttachmentKindImage && a.Kind != AttachmentKindFile {
			return fmt.Errorf("unknown attachment kind %q", a.Kind)
		}
		if a.URL == "" {
			return errors.New("attachment requires url")
		}
	}
	return nil
}

func (e JoinRoomEvent) Validate() error {
	if e.RoomID == "" {
		return errors.New("join_room requires room_id")
	}
	return nil
}

func (e LeaveRoomEvent) Validate() error {
	if e.RoomID == "" {
		return errors.New("leave_room requires room_id")
	}
	return nil
}

func (e TypingEvent) Validate() error {
	if e.RoomID == "" {
		return errors.New("typing requires room_id")
	}
	return nil
}

func (e MarkReadEvent) Validate() error {
	if e.RoomID == "" {
		return errors.New("mark_read requires room_id")
	}
	return nil
}

func (e HeartbeatEvent) Validate() error { return nil }

type eventEnvelope struct {
	Type string `json:"type"`
}

// ParseInboundEvent decodes a raw socket frame into its tagged event type
// and validates it. Unknown types and invalid payloads are rejected here so
// the hub only ever sees well-formed events.
func ParseInboundEvent(raw []byte) (InboundEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	var ev InboundEvent
	switch env.Type {
	case EventSendMessage:
		var e SendMessageEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		ev = e
	case EventJoinRoom:
		var e JoinRoomEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		ev = e
	case EventLeaveRoom:
		var e LeaveRoomEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		ev = e
	case EventTyping:
		var e TypingEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		ev = e
	case EventMarkRead:
		var e MarkReadEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		ev = e
	case EventHeartbeat:
		ev = HeartbeatEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

package chathub

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"traderlink/backend/internal/models"
	"traderlink/backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Inbound pairs a validated event with the connection it arrived on, so the
// hub can exclude that connection from the broadcast.
type Inbound struct {
	Origin Client
	Event  models.InboundEvent
}

// Notifier is the seam between the relay and the offline-notification
// pipeline. Called only for recipients with no connection subscribed to the
// room; implementations decide whether and how to alert.
type Notifier interface {
	Notify(room *models.ChatRoom, msg models.WireMessageEvent, recipientID string)
}

// ManagerService is the hub: it owns the register/unregister lifecycle and
// is the single entry point for inbound socket events.
type ManagerService struct {
	Presence Presence
	Storage  storage.Storage
	Notifier Notifier

	IncomingCh   chan Inbound
	RegisterCh   chan Client
	UnregisterCh chan Client
}

func NewManagerService(s storage.Storage, p Presence, n Notifier) *ManagerService {
	return &ManagerService{
		Presence:     p,
		Storage:      s,
		Notifier:     n,
		IncomingCh:   make(chan Inbound),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
	}
}

// RecoverActiveRooms logs the rooms that were active before this process
// started. Presence and pending digests do not survive a restart; the rooms
// themselves do.
func (m *ManagerService) RecoverActiveRooms() {
	activeRoomIDs, err := m.Storage.GetActiveRoomIDs()
	if err != nil {
		log.Printf("ERROR: Failed to retrieve active rooms from storage: %v", err)
		return
	}
	log.Printf("Recovery complete. Found %d previously active rooms.", len(activeRoomIDs))
}

// Run is the hub's main dispatch loop.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Presence.Connect(client)
			log.Printf("Client connected: %s", client.GetUserID())

		case client := <-m.UnregisterCh:
			// Removed from presence before Close so no broadcast can race
			// with the closing send channel.
			m.Presence.Disconnect(client)
			client.Close()
			log.Printf("Client disconnected: %s", client.GetUserID())

		case in := <-m.IncomingCh:
			m.dispatch(in)
		}
	}
}

func (m *ManagerService) dispatch(in Inbound) {
	switch ev := in.Event.(type) {
	case models.SendMessageEvent:
		m.handleSendMessage(in.Origin, ev)
	case models.JoinRoomEvent:
		m.handleJoinRoom(in.Origin, ev)
	case models.LeaveRoomEvent:
		m.handleLeaveRoom(in.Origin, ev)
	case models.TypingEvent:
		m.handleTyping(in.Origin, ev)
	case models.MarkReadEvent:
		m.handleMarkRead(in.Origin, ev)
	case models.HeartbeatEvent:
		m.touch(in.Origin.GetUserID())
	default:
		log.Printf("WARNING: Unhandled event type %T from %s", ev, in.Origin.GetUserID())
	}
}

// handleSendMessage persists and relays one chat message, then hands the
// offline counterpart over to the notification pipeline.
func (m *ManagerService) handleSendMessage(origin Client, ev models.SendMessageEvent) {
	senderID := origin.GetUserID()
	m.touch(senderID)

	wire := models.WireMessageEvent{
		Type:        models.WireMessage,
		RoomID:      ev.RoomID,
		SenderID:    senderID,
		SenderName:  origin.GetDisplayName(),
		Content:     ev.Content,
		Attachments: ev.Attachments,
	}

	msg := &models.ChatMessage{
		RoomID:      ev.RoomID,
		SenderID:    senderID,
		Content:     ev.Content,
		Attachments: marshalAttachments(ev.Attachments),
	}
	if err := m.Storage.SaveMessage(msg); err != nil {
		// Realtime delivery is prioritized over the store: connected peers
		// still get a best-effort copy with a local id and timestamp.
		log.Printf("ERROR: Message save failed for room %s, broadcasting best-effort copy: %v", ev.RoomID, err)
		wire.ID = "local-" + uuid.New().String()
		wire.CreatedAt = time.Now()
	} else {
		wire.ID = strconv.FormatUint(uint64(msg.ID), 10)
		wire.CreatedAt = msg.CreatedAt
	}

	// Fan out to every other connection subscribed to the room. The sender's
	// own connection never gets an echo.
	m.broadcastToRoom(ev.RoomID, origin, wire)

	room, err := m.Storage.GetRoomByID(ev.RoomID)
	if err != nil {
		log.Printf("ERROR: Cannot resolve room %s, skipping notification: %v", ev.RoomID, err)
		return
	}
	recipientID := room.Counterpart(senderID)
	if recipientID == "" || recipientID == senderID {
		log.Printf("WARNING: No valid recipient in room %s for sender %s", ev.RoomID, senderID)
		return
	}

	// Realtime delivery already reached an online recipient.
	if _, online := m.Presence.OnlineUsersInRoom(ev.RoomID)[recipientID]; online {
		return
	}

	if m.Notifier != nil {
		go m.Notifier.Notify(room, wire, recipientID)
	}
}

func (m *ManagerService) handleJoinRoom(origin Client, ev models.JoinRoomEvent) {
	userID := origin.GetUserID()
	m.touch(userID)

	room, err := m.Storage.GetRoomByID(ev.RoomID)
	if err != nil {
		log.Printf("WARNING: Join rejected, room %s: %v", ev.RoomID, err)
		return
	}
	if room.RequesterID != userID && room.ProviderID != userID {
		log.Printf("WARNING: Join rejected, user %s is not a participant of room %s", userID, ev.RoomID)
		return
	}

	origin.JoinRoom(ev.RoomID)
}

func (m *ManagerService) handleLeaveRoom(origin Client, ev models.LeaveRoomEvent) {
	m.touch(origin.GetUserID())
	origin.LeaveRoom(ev.RoomID)
}

func (m *ManagerService) handleTyping(origin Client, ev models.TypingEvent) {
	m.touch(origin.GetUserID())
	m.broadcastToRoom(ev.RoomID, origin, map[string]any{
		"type":      models.WireTyping,
		"room_id":   ev.RoomID,
		"user_id":   origin.GetUserID(),
		"user_name": origin.GetDisplayName(),
	})
}

func (m *ManagerService) handleMarkRead(origin Client, ev models.MarkReadEvent) {
	readerID := origin.GetUserID()
	m.touch(readerID)

	if err := m.Storage.MarkRoomMessagesRead(ev.RoomID, readerID); err != nil {
		log.Printf("ERROR: Mark-read failed for room %s: %v", ev.RoomID, err)
		return
	}

	m.broadcastToRoom(ev.RoomID, origin, map[string]any{
		"type":    models.WireMessagesRead,
		"room_id": ev.RoomID,
		"user_id": readerID,
	})
}

// touch records user activity. Errors are logged and swallowed so activity
// tracking never blocks message delivery.
func (m *ManagerService) touch(userID string) {
	if err := m.Storage.TouchActivity(userID); err != nil {
		log.Printf("WARNING: Activity touch failed for %s: %v", userID, err)
	}
}

func (m *ManagerService) broadcastToRoom(roomID string, exclude Client, payload any) {
	for _, client := range m.Presence.ClientsInRoom(roomID) {
		if client == exclude {
			continue
		}
		select {
		case client.GetSendChannel() <- payload:
		default:
			// Slow client; dropping beats stalling the dispatch loop.
			log.Printf("WARNING: Send buffer full for %s, dropping payload", client.GetUserID())
		}
	}
}

func marshalAttachments(atts []models.Attachment) datatypes.JSON {
	if len(atts) == 0 {
		return nil
	}
	data, err := json.Marshal(atts)
	if err != nil {
		log.Printf("ERROR: Failed to encode attachments: %v", err)
		return nil
	}
	return datatypes.JSON(data)
}

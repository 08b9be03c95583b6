package notify

import (
	"log"

	"traderlink/backend/internal/models"
	"traderlink/backend/internal/storage"
)

// Service ties the rules engine and the aggregator together. It implements
// chathub.Notifier: the relay hands it every message whose recipient is not
// online, and it decides skip / batch / immediate from there. Nothing here
// returns an error to the relay; notification delivery is best-effort.
type Service struct {
	Storage storage.Storage
	Engine  *Engine
	Agg     *Aggregator
}

func NewService(s storage.Storage, d Dispatcher, r *DigestRenderer) *Service {
	return &Service{
		Storage: s,
		Engine:  NewEngine(s),
		Agg:     NewAggregator(s, d, r),
	}
}

func (s *Service) Notify(room *models.ChatRoom, msg models.WireMessageEvent, recipientID string) {
	decision := s.Engine.ShouldNotify(recipientID, room.RoomID, msg.Content)
	if !decision.Send {
		log.Printf("Notification skipped for %s/%s: %s", recipientID, room.RoomID, decision.Reason)
		return
	}

	user, err := s.Storage.GetUserByID(recipientID)
	if err != nil {
		log.Printf("ERROR: Cannot resolve notification recipient %s: %v", recipientID, err)
		return
	}
	rcpt := Recipient{
		ID:             user.ID,
		Name:           user.DisplayName,
		Email:          user.Email,
		TelegramChatID: user.TelegramChatID,
		IsProvider:     user.IsProvider,
		Channels:       user.NotifyChannels,
	}

	content := msg.Content
	if content == "" && len(msg.Attachments) > 0 {
		content = "[attachment]"
	}

	if decision.Immediate {
		s.Agg.SendImmediate(rcpt, room, msg.SenderID, msg.SenderName, content)
	} else {
		s.Agg.Enqueue(rcpt, room, msg.SenderID, msg.SenderName, content)
	}
}

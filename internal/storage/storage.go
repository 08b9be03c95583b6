package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"traderlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(userID string) (*models.User, error)

	SaveRoom(room *models.ChatRoom) error
	GetRoomByID(roomID string) (*models.ChatRoom, error)
	CloseRoom(roomID string) error
	GetActiveRoomIDs() ([]string, error)

	SaveMessage(msg *models.ChatMessage) error
	GetRoomMessages(roomID string, limit int) ([]models.ChatMessage, error)
	MarkRoomMessagesRead(roomID, readerID string) error

	TouchActivity(userID string) error
	GetLastActivity(userID string) (*time.Time, error)

	RecordNotification(recipientID, roomID, channel string, sentAt time.Time) error
	LastNotifiedAt(recipientID, roomID string) (*time.Time, error)
	CountNotificationsSince(recipientID string, since time.Time) (int64, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser persists the user in PostgreSQL.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// GetUserByID loads a user by ID. Not-found is returned as an error since
// every caller needs the row to proceed.
func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("user not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to load user %s: %v", userID, err)
		return nil, err
	}
	return &user, nil
}

// SaveRoom persists the room in PostgreSQL.
func (s *Service) SaveRoom(room *models.ChatRoom) error {
	return s.DB.Save(room).Error
}

func (s *Service) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom

	err := s.DB.Where("room_id = ?", roomID).First(&room).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("chat room not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// CloseRoom soft-closes the room, setting IsActive = false and stamping
// EndedAt.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.ChatRoom{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  time.Now(),
		}).Error
}

// GetActiveRoomIDs returns every RoomID that is currently active.
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	var roomIDs []string

	if err := s.DB.Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {

		log.Printf("ERROR: Failed to retrieve active RoomIDs: %v", err)
		return nil, err
	}
	return roomIDs, nil
}

// SaveMessage persists a chat message. GORM fills msg.ID and msg.CreatedAt,
// which serve as the durable message ID and server timestamp.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// GetRoomMessages loads the most recent messages of a room, newest first.
func (s *Service) GetRoomMessages(roomID string, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.DB.Where("room_id = ?", roomID).
		Order("created_at desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for room %s: %v", roomID, err)
		return nil, err
	}
	return msgs, nil
}

// MarkRoomMessagesRead flips IsRead on every unread message in the room that
// the reader did not send. The WHERE clause makes the update monotonic
// (false to true only), idempotent, and unable to touch the reader's own
// messages.
func (s *Service) MarkRoomMessagesRead(roomID, readerID string) error {
	return s.DB.Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true).Error
}

// TouchActivity upserts the user's last-seen timestamp in Redis. Overwritten
// in place; no history is retained.
func (s *Service) TouchActivity(userID string) error {
	key := "activity:" + userID
	return s.Redis.Set(s.Ctx, key, time.Now().Format(time.RFC3339Nano), 0).Err()
}

// GetLastActivity returns the user's last-seen timestamp, or nil if the user
// has never been seen.
func (s *Service) GetLastActivity(userID string) (*time.Time, error) {
	key := "activity:" + userID
	val, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// RecordNotification appends one row to the notification log.
func (s *Service) RecordNotification(recipientID, roomID, channel string, sentAt time.Time) error {
	rec := models.EmailNotification{
		RecipientID: recipientID,
		RoomID:      roomID,
		Channel:     channel,
		SentAt:      sentAt,
	}
	if err := s.DB.Create(&rec).Error; err != nil {
		log.Printf("ERROR: Failed to record notification for %s/%s: %v", recipientID, roomID, err)
		return err
	}
	return nil
}

// LastNotifiedAt returns when the (recipient, room) pair was last emailed,
// or nil if never.
func (s *Service) LastNotifiedAt(recipientID, roomID string) (*time.Time, error) {
	var rec models.EmailNotification
	err := s.DB.Where("recipient_id = ? AND room_id = ?", recipientID, roomID).
		Order("sent_at desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec.SentAt, nil
}

// CountNotificationsSince counts notifications sent to the recipient after
// the given instant, across all rooms and channels.
func (s *Service) CountNotificationsSince(recipientID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.EmailNotification{}).
		Where("recipient_id = ? AND sent_at >= ?", recipientID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

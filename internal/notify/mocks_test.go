package notify_test

import (
	"sync"
	"time"

	"traderlink/backend/internal/models"
	"traderlink/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock over the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveRoom(room *models.ChatRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) CloseRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) GetActiveRoomIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetRoomMessages(roomID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) MarkRoomMessagesRead(roomID, readerID string) error {
	args := m.Called(roomID, readerID)
	return args.Error(0)
}

func (m *MockStorage) TouchActivity(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetLastActivity(userID string) (*time.Time, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockStorage) RecordNotification(recipientID, roomID, channel string, sentAt time.Time) error {
	args := m.Called(recipientID, roomID, channel, sentAt)
	return args.Error(0)
}

func (m *MockStorage) LastNotifiedAt(recipientID, roomID string) (*time.Time, error) {
	args := m.Called(recipientID, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockStorage) CountNotificationsSince(recipientID string, since time.Time) (int64, error) {
	args := m.Called(recipientID, since)
	return args.Get(0).(int64), args.Error(1)
}

// fakeDispatcher records every rendered notification it is asked to deliver.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []*notify.RenderedNotification
	err  error
}

func (d *fakeDispatcher) Send(n *notify.RenderedNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func (d *fakeDispatcher) last() *notify.RenderedNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return nil
	}
	return d.sent[len(d.sent)-1]
}

func timePtr(t time.Time) *time.Time { return &t }

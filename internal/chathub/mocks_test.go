package chathub_test

import (
	"sync"
	"time"

	"traderlink/backend/internal/chathub"
	"traderlink/backend/internal/models"

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

// mockClient is an in-memory stand-in for a socket connection. Its send
// channel is buffered so hub fan-out never blocks a test.
type mockClient struct {
	userID      string
	displayName string
	provider    bool

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool

	send chan any
}

func newMockClient(userID, displayName string) *mockClient {
	return &mockClient{
		userID:      userID,
		displayName: displayName,
		rooms:       make(map[string]struct{}),
		send:        make(chan any, 16),
	}
}

func (c *mockClient) GetUserID() string      { return c.userID }
func (c *mockClient) GetDisplayName() string { return c.displayName }
func (c *mockClient) IsProvider() bool       { return c.provider }

func (c *mockClient) JoinRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *mockClient) LeaveRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

func (c *mockClient) InRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}

func (c *mockClient) GetSendChannel() chan<- any { return c.send }

func (c *mockClient) Run() {}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *mockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// received drains everything currently buffered on the send channel.
func (c *mockClient) received() []any {
	var out []any
	for {
		select {
		case p := <-c.send:
			out = append(out, p)
		default:
			return out
		}
	}
}

// spyNotifier records every hand-off from the relay to the notification
// pipeline.
type spyNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	RoomID      string
	RecipientID string
	Msg         models.WireMessageEvent
}

func (s *spyNotifier) Notify(room *models.ChatRoom, msg models.WireMessageEvent, recipientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, notifyCall{RoomID: room.RoomID, RecipientID: recipientID, Msg: msg})
}

func (s *spyNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyNotifier) last() notifyCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

var _ chathub.Client = (*mockClient)(nil)
var _ chathub.Notifier = (*spyNotifier)(nil)

package chathub_test

import (
	"testing"

	"traderlink/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestPresence_ConnectDisconnect(t *testing.T) {
	p := chathub.NewMemoryPresence()
	c := newMockClient("user_1", "Ada")

	assert.False(t, p.IsOnline("user_1"))

	p.Connect(c)
	assert.True(t, p.IsOnline("user_1"))

	p.Disconnect(c)
	assert.False(t, p.IsOnline("user_1"))
}

// A user with two tabs open stays online until the last connection drops.
func TestPresence_MultipleConnectionsPerUser(t *testing.T) {
	p := chathub.NewMemoryPresence()
	tab1 := newMockClient("user_1", "Ada")
	tab2 := newMockClient("user_1", "Ada")

	p.Connect(tab1)
	p.Connect(tab2)
	assert.True(t, p.IsOnline("user_1"))

	p.Disconnect(tab1)
	assert.True(t, p.IsOnline("user_1"))

	p.Disconnect(tab2)
	assert.False(t, p.IsOnline("user_1"))
}

func TestPresence_DisconnectUnknownIsNoop(t *testing.T) {
	p := chathub.NewMemoryPresence()
	c := newMockClient("user_1", "Ada")

	p.Disconnect(c)
	assert.False(t, p.IsOnline("user_1"))
}

// Room presence is derived from each connection's subscriptions, so a
// connected user who never joined the room does not count.
func TestPresence_OnlineUsersInRoom(t *testing.T) {
	p := chathub.NewMemoryPresence()

	joined := newMockClient("user_1", "Ada")
	joined.JoinRoom("room_1")
	lurking := newMockClient("user_2", "Ben")

	p.Connect(joined)
	p.Connect(lurking)

	users := p.OnlineUsersInRoom("room_1")
	assert.Contains(t, users, "user_1")
	assert.NotContains(t, users, "user_2")
}

func TestPresence_OnlineUsersInRoomDedupsConnections(t *testing.T) {
	p := chathub.NewMemoryPresence()

	tab1 := newMockClient("user_1", "Ada")
	tab1.JoinRoom("room_1")
	tab2 := newMockClient("user_1", "Ada")
	tab2.JoinRoom("room_1")

	p.Connect(tab1)
	p.Connect(tab2)

	users := p.OnlineUsersInRoom("room_1")
	assert.Len(t, users, 1)

	// But fan-out still reaches both connections.
	assert.Len(t, p.ClientsInRoom("room_1"), 2)
}

func TestPresence_LeaveRoomRemovesFromRoomViews(t *testing.T) {
	p := chathub.NewMemoryPresence()

	c := newMockClient("user_1", "Ada")
	c.JoinRoom("room_1")
	p.Connect(c)

	c.LeaveRoom("room_1")

	assert.True(t, p.IsOnline("user_1"))
	assert.Empty(t, p.OnlineUsersInRoom("room_1"))
	assert.Empty(t, p.ClientsInRoom("room_1"))
}

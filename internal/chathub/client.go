package chathub

// Client is the interface for any type of connection. It abstracts the
// underlying transport, allowing the hub to manage different client types
// uniformly (the production implementation is WebSocketClient; tests supply
// their own).
type Client interface {
	// GetUserID returns the unique identifier of the authenticated user
	// behind this connection.
	GetUserID() string
	// GetDisplayName returns the user's display name, resolved at connect
	// time so the hub never blocks on a lookup while relaying.
	GetDisplayName() string
	// IsProvider reports whether the user is the portal-owning party.
	IsProvider() bool

	// JoinRoom subscribes this connection to a room's broadcast channel.
	JoinRoom(roomID string)
	// LeaveRoom unsubscribes this connection from a room.
	LeaveRoom(roomID string)
	// InRoom reports whether this connection is subscribed to the room.
	InRoom(roomID string) bool

	// GetSendChannel returns the channel the hub writes outbound payloads
	// to. Payloads are JSON-encoded by the client's write pump.
	GetSendChannel() chan<- any

	// Run starts the client's read and write pumps.
	Run()
	// Close gracefully shuts down the client's connection and channels.
	Close()
}

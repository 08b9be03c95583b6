package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"traderlink/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the chathub.Client interface over a gorilla
// WebSocket connection.
type WebSocketClient struct {
	UserID      string
	DisplayName string
	Provider    bool
	Conn        *websocket.Conn
	Hub         *ManagerService
	Send        chan any

	roomsMu sync.RWMutex
	rooms   map[string]struct{}
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, user *models.User) *WebSocketClient {
	return &WebSocketClient{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Provider:    user.IsProvider,
		Conn:        conn,
		Hub:         hub,
		Send:        make(chan any, 256),
		rooms:       make(map[string]struct{}),
	}
}

func (c *WebSocketClient) GetUserID() string          { return c.UserID }
func (c *WebSocketClient) GetDisplayName() string     { return c.DisplayName }
func (c *WebSocketClient) IsProvider() bool           { return c.Provider }
func (c *WebSocketClient) GetSendChannel() chan<- any { return c.Send }

func (c *WebSocketClient) JoinRoom(roomID string) {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *WebSocketClient) LeaveRoom(roomID string) {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	delete(c.rooms, roomID)
}

func (c *WebSocketClient) InRoom(roomID string) bool {
	c.roomsMu.RLock()
	defer c.roomsMu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. The read pump
// stops on its own once Conn.Close is called in its defer.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		// Events are validated at this boundary; the hub only ever sees
		// well-formed typed events.
		ev, err := models.ParseInboundEvent(raw)
		if err != nil {
			log.Printf("Rejected event from client %s: %v", c.UserID, err)
			continue
		}

		c.Hub.IncomingCh <- Inbound{Origin: c, Event: ev}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub, close the WS connection.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(payload)
			if err != nil {
				log.Printf("Error encoding JSON for client %s: %v", c.UserID, err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			// Ping to keep the connection alive.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

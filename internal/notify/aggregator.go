package notify

import (
	"log"
	"strings"
	"sync"
	"time"

	"traderlink/backend/internal/config"
	"traderlink/backend/internal/models"
	"traderlink/backend/internal/storage"
)

// Recipient carries everything the digest pipeline needs to address one
// user, resolved once when the first message is queued.
type Recipient struct {
	ID             string
	Name           string
	Email          string
	TelegramChatID string
	IsProvider     bool
	Channels       []string
}

type aggKey struct {
	RecipientID string
	RoomID      string
}

type digestEntry struct {
	SenderID   string
	SenderName string
	Content    string // truncated to config.DigestContentLimit
	At         time.Time
}

type pendingDigest struct {
	Recipient Recipient
	RoomID    string
	OptionTag string
	Entries   []digestEntry
	// Senders accumulates distinct sender display names in arrival order.
	Senders []string
	FirstAt time.Time
	LastAt  time.Time
	timer   *time.Timer
}

// Aggregator debounces notifications per (recipient, room). Every enqueued
// message restarts the flush countdown, so a digest only fires after the
// conversation has been quiet for the full delay ("wait for quiet", not
// fixed-interval batching). At most one timer exists per key: enqueueing
// always stops the previous timer before arming a new one.
type Aggregator struct {
	mu      sync.Mutex
	pending map[aggKey]*pendingDigest

	// Delay is the quiet period before a digest flushes. Overridable in
	// tests; defaults to config.DigestFlushDelay.
	Delay time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	dispatch Dispatcher
	storage  storage.Storage
	renderer *DigestRenderer
}

func NewAggregator(s storage.Storage, d Dispatcher, r *DigestRenderer) *Aggregator {
	return &Aggregator{
		pending:  make(map[aggKey]*pendingDigest),
		Delay:    config.DigestFlushDelay,
		Now:      time.Now,
		dispatch: d,
		storage:  s,
		renderer: r,
	}
}

// Enqueue buffers one message for the (recipient, room) digest and restarts
// the flush countdown.
func (a *Aggregator) Enqueue(rcpt Recipient, room *models.ChatRoom, senderID, senderName, content string) {
	key := aggKey{RecipientID: rcpt.ID, RoomID: room.RoomID}

	a.mu.Lock()
	rec := a.append(key, rcpt, room, senderID, senderName, content)
	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.timer = time.AfterFunc(a.Delay, func() {
		a.flush(key)
	})
	a.mu.Unlock()
}

// SendImmediate queues the message so it joins whatever is already pending
// for the key, then flushes synchronously instead of waiting for the timer.
// Used exclusively for priority messages.
func (a *Aggregator) SendImmediate(rcpt Recipient, room *models.ChatRoom, senderID, senderName, content string) {
	key := aggKey{RecipientID: rcpt.ID, RoomID: room.RoomID}

	a.mu.Lock()
	rec := a.append(key, rcpt, room, senderID, senderName, content)
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
	a.mu.Unlock()

	a.flush(key)
}

// PendingCount reports how many digests are currently accumulating.
func (a *Aggregator) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// append must be called with the mutex held.
func (a *Aggregator) append(key aggKey, rcpt Recipient, room *models.ChatRoom, senderID, senderName, content string) *pendingDigest {
	rec, ok := a.pending[key]
	if !ok {
		rec = &pendingDigest{
			Recipient: rcpt,
			RoomID:    room.RoomID,
			OptionTag: room.OptionTag,
			FirstAt:   a.Now(),
		}
		a.pending[key] = rec
	}

	rec.Entries = append(rec.Entries, digestEntry{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    truncate(content, config.DigestContentLimit),
		At:         a.Now(),
	})
	rec.LastAt = a.Now()

	seen := false
	for _, name := range rec.Senders {
		if name == senderName {
			seen = true
			break
		}
	}
	if !seen {
		rec.Senders = append(rec.Senders, senderName)
	}
	return rec
}

// flush is invoked by timer expiry or by SendImmediate. It takes ownership
// of the pending record under the lock, then renders and dispatches outside
// it. A key that has already been flushed is a no-op. The record is cleared
// even when dispatch fails: a failed digest is a lost notification, not a
// lost message.
func (a *Aggregator) flush(key aggKey) {
	a.mu.Lock()
	rec, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	if rec.timer != nil {
		rec.timer.Stop()
	}
	delete(a.pending, key)
	a.mu.Unlock()

	rendered := a.renderer.Render(rec)
	if err := a.dispatch.Send(rendered); err != nil {
		log.Printf("ERROR: Digest dispatch failed for %s/%s: %v", key.RecipientID, key.RoomID, err)
		return
	}

	channel := strings.Join(rec.Recipient.Channels, ",")
	if channel == "" {
		channel = ChannelEmail
	}
	if err := a.storage.RecordNotification(key.RecipientID, key.RoomID, channel, a.Now()); err != nil {
		log.Printf("ERROR: Failed to log notification for %s/%s: %v", key.RecipientID, key.RoomID, err)
	}
}

// truncate caps s at limit runes, ellipsis included.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

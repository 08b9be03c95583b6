package notify

import (
	"log"
	"strings"
	"time"

	"traderlink/backend/internal/config"
	"traderlink/backend/internal/storage"
)

// Decision is the outcome of evaluating the gating rules for one message.
type Decision struct {
	Send      bool
	Immediate bool
	// Reason names the rule that suppressed the send, for logging.
	Reason string
}

// Engine decides whether an offline recipient should be alerted about a
// message, and whether immediately or batched. Evaluation order is fixed:
// recent activity, per-room cooldown, priority classification, business
// hours (bypassed for priority messages), daily quota. Note that the
// cooldown is checked before the priority classification, so an urgent
// message inside the cooldown window is still suppressed.
type Engine struct {
	Storage storage.Storage
	Loc     *time.Location
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewEngine(s storage.Storage) *Engine {
	return &Engine{
		Storage: s,
		Loc:     config.WATZone,
		Now:     time.Now,
	}
}

// ShouldNotify evaluates the gating rules for (recipient, room, content).
// Store read failures are logged and treated as "no data" so a Redis or
// database blip cannot silently drop every notification.
func (e *Engine) ShouldNotify(recipientID, roomID, content string) Decision {
	now := e.Now()

	// Recently active users are presumed to be looking at the app on
	// another device even though not online by presence.
	last, err := e.Storage.GetLastActivity(recipientID)
	if err != nil {
		log.Printf("WARNING: Activity lookup failed for %s: %v", recipientID, err)
	}
	if last != nil && now.Sub(*last) < config.RecentActivityWindow {
		return Decision{Reason: "recently active"}
	}

	// Per-room cooldown keeps one busy conversation from flooding the inbox.
	lastSent, err := e.Storage.LastNotifiedAt(recipientID, roomID)
	if err != nil {
		log.Printf("WARNING: Notification log lookup failed for %s/%s: %v", recipientID, roomID, err)
	}
	if lastSent != nil && now.Sub(*lastSent) < config.RoomEmailCooldown {
		return Decision{Reason: "room cooldown"}
	}

	priority := IsPriorityMessage(content)

	// Urgent and transactional messages must alert regardless of the hour.
	if !priority {
		hour := now.In(e.Loc).Hour()
		if hour < config.BusinessHoursStart || hour > config.BusinessHoursEnd {
			return Decision{Reason: "outside business hours"}
		}
	}

	localNow := now.In(e.Loc)
	midnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, e.Loc)
	count, err := e.Storage.CountNotificationsSince(recipientID, midnight)
	if err != nil {
		log.Printf("WARNING: Quota lookup failed for %s: %v", recipientID, err)
	}
	if count >= config.DailyEmailQuota {
		return Decision{Reason: "daily quota reached"}
	}

	return Decision{Send: true, Immediate: priority}
}

// IsPriorityMessage reports whether the content matches any configured
// priority keyword (case-insensitive substring match).
func IsPriorityMessage(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range config.PriorityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

package config

import "time"

const (
	// Gating
	RecentActivityWindow = 10 * time.Minute
	RoomEmailCooldown    = 60 * time.Minute
	DailyEmailQuota      = 20

	// Business hours, local hours in WAT. A send is skipped when
	// hour < BusinessHoursStart or hour > BusinessHoursEnd.
	BusinessHoursStart = 9
	BusinessHoursEnd   = 21

	// Aggregation
	DigestFlushDelay   = 5 * time.Minute
	DigestMaxMessages  = 5
	DigestContentLimit = 150
)

// WATZone is West Africa Time. WAT has no daylight saving, so a fixed
// offset is sufficient and keeps tests independent of the host tzdata.
var WATZone = time.FixedZone("WAT", 60*60)

// PriorityKeywords classify a message as high priority (case-insensitive
// substring match). A priority message skips batching and the business-hours
// gate, but not the cooldown or the daily quota.
var PriorityKeywords = []string{
	// urgency
	"urgent", "emergency", "asap", "important", "immediate",
	// transaction / financial
	"payment", "transfer", "bitcoin", "btc", "usdt", "eth", "naira",
	"dollar", "cash", "money", "buy now", "sell now", "trade now",
	// distress
	"scam", "fraud", "help", "problem", "issue", "stuck", "error",
}

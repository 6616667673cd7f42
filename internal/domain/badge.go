package domain

import "context"

// StatName names a user progress counter.
type StatName string

const (
	StatEventsAttended  StatName = "eventsAttended"
	StatEventsOrganized StatName = "eventsOrganized"
	StatCommentsPosted  StatName = "commentsPosted"
)

// BadgeContext carries event-scoped data some badge criteria depend on.
type BadgeContext struct {
	AttendeesCount int
}

// BadgeInfo describes a badge in the catalog, independent of any user.
type BadgeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// BadgeEngine keeps per-user progress counters and awards each catalog badge
// at most once, the moment its criterion first holds.
type BadgeEngine interface {
	// IncrementStat adds amount to the named counter, persists it, then
	// evaluates every catalog rule. Returns the updated stats and any badges
	// awarded by this call. ErrUserNotFound when the user does not exist.
	IncrementStat(ctx context.Context, userID string, stat StatName, amount int, bctx *BadgeContext) (Stats, []Badge, error)
	// EvaluateBadges awards every catalog badge the user does not yet hold
	// whose criterion holds for the current stats and context, in catalog
	// order. Idempotent: a second call with unchanged stats awards nothing.
	EvaluateBadges(ctx context.Context, userID string, bctx *BadgeContext) ([]Badge, error)
	// Catalog lists every badge that can be earned.
	Catalog() []BadgeInfo
}

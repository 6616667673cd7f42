package badges

import "campusevents/internal/domain"

// Rule is one badge definition: identity plus a pure criterion over the
// user's stats and optional event context.
type Rule struct {
	Name        string
	Description string
	Icon        string
	Criteria    func(stats domain.Stats, bctx *domain.BadgeContext) bool
}

// Catalog is an ordered, immutable badge rule table. Evaluation and award
// order is catalog order.
type Catalog []Rule

// DefaultCatalog returns the platform badge catalog.
//
// Count-based criteria intentionally use equality at the threshold rather
// than >=: a badge is awarded on the exact call where the counter reaches
// the threshold. A counter that jumps past a threshold in a single
// increment skips that badge. Only the attendee-count criterion is >=,
// since it reads a snapshot rather than a transition.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:        "First Step",
			Description: "Attended your first event",
			Icon:        "🎉",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsAttended == 1
			},
		},
		{
			Name:        "Active Participant",
			Description: "Attended 5 events",
			Icon:        "⭐",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsAttended == 5
			},
		},
		{
			Name:        "Event Enthusiast",
			Description: "Attended 10 events",
			Icon:        "🏆",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsAttended == 10
			},
		},
		{
			Name:        "Event Veteran",
			Description: "Attended 25 events",
			Icon:        "💎",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsAttended == 25
			},
		},
		{
			Name:        "Event Creator",
			Description: "Organized your first event",
			Icon:        "🎪",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsOrganized == 1
			},
		},
		{
			Name:        "Popular Organizer",
			Description: "Organized an event with 50+ attendees",
			Icon:        "🌟",
			Criteria: func(_ domain.Stats, bctx *domain.BadgeContext) bool {
				return bctx != nil && bctx.AttendeesCount >= 50
			},
		},
		{
			Name:        "Super Organizer",
			Description: "Organized 10 events",
			Icon:        "👑",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.EventsOrganized == 10
			},
		},
		{
			Name:        "Conversation Starter",
			Description: "Posted 10 comments",
			Icon:        "💬",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.CommentsPosted == 10
			},
		},
		{
			Name:        "Community Builder",
			Description: "Posted 50 comments",
			Icon:        "🤝",
			Criteria: func(s domain.Stats, _ *domain.BadgeContext) bool {
				return s.CommentsPosted == 50
			},
		},
	}
}

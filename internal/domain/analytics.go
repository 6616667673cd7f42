package domain

import (
	"context"
	"time"
)

// OverviewStats is the analytics dashboard summary. Organizers see their own
// events; admins see all.
type OverviewStats struct {
	TotalEvents        int     `json:"totalEvents"`
	PublishedEvents    int     `json:"publishedEvents"`
	DraftEvents        int     `json:"draftEvents"`
	UpcomingEvents     int     `json:"upcomingEvents"`
	PastEvents         int     `json:"pastEvents"`
	TotalRegistrations int     `json:"totalRegistrations"`
	TotalViews         int     `json:"totalViews"`
	AvgAttendanceRate  float64 `json:"avgAttendanceRate"`
	MostPopularEvent   *PopularEvent `json:"mostPopularEvent"`
}

// PopularEvent is the most attended event in an overview.
type PopularEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Attendees int    `json:"attendees"`
	Views     int    `json:"views"`
}

// CategoryStats aggregates published events by category.
type CategoryStats struct {
	Category       string `json:"category"`
	Count          int    `json:"count"`
	TotalAttendees int    `json:"totalAttendees"`
	TotalViews     int    `json:"totalViews"`
}

// TimelineBucket is one day or month bucket of the engagement timeline.
type TimelineBucket struct {
	Date          string `json:"date"`
	Events        int    `json:"events"`
	Registrations int    `json:"registrations"`
	Views         int    `json:"views"`
}

// TopEvent is one entry of the top-events ranking. EngagementScore is
// views + 2*attendees.
type TopEvent struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Category        string       `json:"category"`
	Date            time.Time    `json:"date"`
	Attendees       int          `json:"attendees"`
	Views           int          `json:"views"`
	Capacity        *int         `json:"capacity"`
	EngagementScore int          `json:"engagementScore"`
	CreatedBy       *UserSummary `json:"createdBy"`
}

// ActiveUser is one row of the most-active rankings (admin view).
type ActiveUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	EventsAttended  int    `json:"eventsAttended,omitempty"`
	EventsOrganized int    `json:"eventsOrganized,omitempty"`
	Badges          int    `json:"badges"`
}

// UserActivityStats is the admin-only user activity summary.
type UserActivityStats struct {
	TotalUsers       int          `json:"totalUsers"`
	StudentCount     int          `json:"studentCount"`
	OrganizerCount   int          `json:"organizerCount"`
	AdminCount       int          `json:"adminCount"`
	ActiveStudents   []ActiveUser `json:"activeStudents"`
	ActiveOrganizers []ActiveUser `json:"activeOrganizers"`
}

// EventAttendance is the per-event attendance report.
type EventAttendance struct {
	EventID             string            `json:"eventId"`
	EventTitle          string            `json:"eventTitle"`
	EventDate           time.Time         `json:"eventDate"`
	Capacity            *int              `json:"capacity"`
	TotalAttendees      int               `json:"totalAttendees"`
	CapacityUtilization *int              `json:"capacityUtilization"`
	Attendees           []*AttendeeRecord `json:"attendees"`
}

// AnalyticsService computes read-side aggregations over events and users.
// Every method recomputes from a fresh snapshot; results are deterministic
// given the same underlying data.
type AnalyticsService interface {
	Overview(ctx context.Context, userID string, role Role) (*OverviewStats, error)
	Categories(ctx context.Context, userID string, role Role) ([]CategoryStats, error)
	// EngagementTimeline groups events created in the window by day (week,
	// month periods) or month (year period).
	EngagementTimeline(ctx context.Context, userID string, role Role, period string) ([]TimelineBucket, error)
	TopEvents(ctx context.Context, userID string, role Role, limit int, sortBy string) ([]TopEvent, error)
	UserActivity(ctx context.Context, role Role) (*UserActivityStats, error)
	EventAttendance(ctx context.Context, eventID, actorID string, role Role) (*EventAttendance, error)
}

package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
	switch EventStatus(s) {
	case StatusDraft, StatusPublished, StatusCancelled:
		return true
	}
	return false
}

// EventCategories is the closed set of event categories.
var EventCategories = []string{"Sports", "Tech", "Cultural", "Workshop", "Seminar", "Competition"}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, cat := range EventCategories {
		if cat == c {
			return true
		}
	}
	return false
}

// Event represents a college event.
// swagger:model Event
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Location    string       `json:"location"`
	Category    string       `json:"category"`
	// Capacity is nil for unlimited capacity.
	Capacity *int    `json:"capacity"`
	Banner   *string `json:"banner"`
	Status   EventStatus `json:"status"`
	Featured bool        `json:"featured"`
	CreatedBy string       `json:"created_by"`
	Owner     *UserSummary `json:"owner,omitempty"`
	// AttendeeCount and ViewCount are derived from the attendee and view
	// sets; repositories fill them on read.
	AttendeeCount int       `json:"attendee_count"`
	ViewCount     int       `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event owned by ownerID. ID is set by the repository
// on create.
func NewEvent(title, description string, date time.Time, location, category string, capacity *int, status EventStatus, ownerID string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Category:    category,
		Capacity:    capacity,
		Status:      status,
		CreatedBy:   ownerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	Status       string
	Category     string
	CreatedBy    string
	FeaturedOnly bool
	// UpcomingOnly limits to events dated within the next seven days.
	UpcomingOnly bool
	// PopularFirst orders by view count descending instead of date.
	PopularFirst bool
	Search       string
	// CreatedAfter limits to events created at or after the given time.
	CreatedAfter time.Time
}

// AttendeeRecord is one row of an event's attendance roster.
type AttendeeRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Year       string `json:"year"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error

	ListByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	ListByAttendee(ctx context.Context, userID string, publishedOnly bool) ([]*Event, error)
	// ListStartingBetween returns published events whose start time falls in
	// [from, to]. Used by the reminder batch.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error)

	// AddAttendee inserts the registration only while the attendee count is
	// below capacity (unlimited when capacity is NULL). ErrAlreadyRegistered
	// when the user is already in the set, ErrEventFull when the guard
	// rejects the insert.
	AddAttendee(ctx context.Context, eventID, userID string) error
	RemoveAttendee(ctx context.Context, eventID, userID string) error
	IsAttendee(ctx context.Context, eventID, userID string) (bool, error)
	CountAttendees(ctx context.Context, eventID string) (int, error)
	ListAttendees(ctx context.Context, eventID string) ([]*AttendeeRecord, error)

	// AddView records a unique per-user view; repeat views are no-ops.
	AddView(ctx context.Context, eventID, userID string) error
}

// EventInput is the payload for creating an event.
type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Category    string
	Capacity    *int
	Status      string
}

// EventUpdate carries updatable event fields; nil means unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Category    *string
	Capacity    *int
	Status      *string
}

// DashboardStats is the organizer/admin dashboard summary.
type DashboardStats struct {
	TotalEvents        int `json:"totalEvents"`
	PublishedEvents    int `json:"publishedEvents"`
	DraftEvents        int `json:"draftEvents"`
	TotalRegistrations int `json:"totalRegistrations"`
}

// EventService defines event CRUD, lifecycle, and registration operations.
type EventService interface {
	Create(ctx context.Context, ownerID string, input EventInput, banner *Upload) (*Event, []Badge, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	// Get returns the event and, when viewerID is non-empty, records a
	// unique view for that user.
	Get(ctx context.Context, id, viewerID string) (*Event, error)
	Update(ctx context.Context, id, actorID string, actorRole Role, update EventUpdate, banner *Upload) (*Event, error)
	Delete(ctx context.Context, id, actorID string, actorRole Role) error
	Register(ctx context.Context, eventID, userID string) (*Event, []Badge, error)
	Unregister(ctx context.Context, eventID, userID string) error
	MyRegistered(ctx context.Context, userID string) ([]*Event, error)
	MyCreated(ctx context.Context, userID string) ([]*Event, error)
	ToggleFeatured(ctx context.Context, id string, actorRole Role) (*Event, error)
	DashboardStats(ctx context.Context, userID string, role Role) (*DashboardStats, error)
}

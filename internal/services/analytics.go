package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"campusevents/internal/domain"
)

type analyticsService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over the event and user
// repositories.
func NewAnalyticsService(eventRepo domain.EventRepository, userRepo domain.UserRepository, timeout time.Duration) domain.AnalyticsService {
	return &analyticsService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// scopedEvents loads the events visible to the actor: organizers see their
// own, admins see everything.
func (s *analyticsService) scopedEvents(ctx context.Context, userID string, role domain.Role, filter domain.EventFilter) ([]*domain.Event, error) {
	if role == domain.RoleOrganizer {
		filter.CreatedBy = userID
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *analyticsService) Overview(ctx context.Context, userID string, role domain.Role) (*domain.OverviewStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleOrganizer && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	events, err := s.scopedEvents(ctx, userID, role, domain.EventFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	thirtyDaysOut := now.AddDate(0, 0, 30)

	stats := &domain.OverviewStats{TotalEvents: len(events)}
	var withCapacity int
	var rateSum float64
	var mostPopular *domain.Event

	for _, event := range events {
		switch event.Status {
		case domain.StatusPublished:
			stats.PublishedEvents++
		case domain.StatusDraft:
			stats.DraftEvents++
		}
		stats.TotalRegistrations += event.AttendeeCount
		stats.TotalViews += event.ViewCount

		if event.Status == domain.StatusPublished && !event.Date.Before(now) && !event.Date.After(thirtyDaysOut) {
			stats.UpcomingEvents++
		}
		if event.Date.Before(now) {
			stats.PastEvents++
		}
		if event.Capacity != nil && *event.Capacity > 0 {
			withCapacity++
			rateSum += float64(event.AttendeeCount) / float64(*event.Capacity) * 100
		}
		if mostPopular == nil || event.AttendeeCount > mostPopular.AttendeeCount {
			mostPopular = event
		}
	}

	if withCapacity > 0 {
		stats.AvgAttendanceRate = math.Round(rateSum/float64(withCapacity)*100) / 100
	}
	if mostPopular != nil {
		stats.MostPopularEvent = &domain.PopularEvent{
			ID:        mostPopular.ID,
			Title:     mostPopular.Title,
			Attendees: mostPopular.AttendeeCount,
			Views:     mostPopular.ViewCount,
		}
	}
	return stats, nil
}

func (s *analyticsService) Categories(ctx context.Context, userID string, role domain.Role) ([]domain.CategoryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleOrganizer && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	events, err := s.scopedEvents(ctx, userID, role, domain.EventFilter{Status: string(domain.StatusPublished)})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*domain.CategoryStats)
	for _, event := range events {
		entry, ok := byCategory[event.Category]
		if !ok {
			entry = &domain.CategoryStats{Category: event.Category}
			byCategory[event.Category] = entry
		}
		entry.Count++
		entry.TotalAttendees += event.AttendeeCount
		entry.TotalViews += event.ViewCount
	}

	result := make([]domain.CategoryStats, 0, len(byCategory))
	for _, entry := range byCategory {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

func (s *analyticsService) EngagementTimeline(ctx context.Context, userID string, role domain.Role, period string) ([]domain.TimelineBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleOrganizer && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	now := s.now()
	var start time.Time
	byMonth := false
	switch period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "year":
		start = now.AddDate(-1, 0, 0)
		byMonth = true
	default: // month
		start = now.AddDate(0, -1, 0)
	}

	events, err := s.scopedEvents(ctx, userID, role, domain.EventFilter{
		Status:       string(domain.StatusPublished),
		CreatedAfter: start,
	})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*domain.TimelineBucket)
	for _, event := range events {
		key := event.CreatedAt.UTC().Format("2006-01-02")
		if byMonth {
			key = event.CreatedAt.UTC().Format("2006-01")
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &domain.TimelineBucket{Date: key}
			buckets[key] = bucket
		}
		bucket.Events++
		bucket.Registrations += event.AttendeeCount
		bucket.Views += event.ViewCount
	}

	result := make([]domain.TimelineBucket, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (s *analyticsService) TopEvents(ctx context.Context, userID string, role domain.Role, limit int, sortBy string) ([]domain.TopEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleOrganizer && role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = 5
	}

	events, err := s.scopedEvents(ctx, userID, role, domain.EventFilter{Status: string(domain.StatusPublished)})
	if err != nil {
		return nil, err
	}

	top := make([]domain.TopEvent, 0, len(events))
	for _, event := range events {
		top = append(top, domain.TopEvent{
			ID:              event.ID,
			Title:           event.Title,
			Category:        event.Category,
			Date:            event.Date,
			Attendees:       event.AttendeeCount,
			Views:           event.ViewCount,
			Capacity:        event.Capacity,
			EngagementScore: event.ViewCount + event.AttendeeCount*2,
			CreatedBy:       event.Owner,
		})
	}

	switch sortBy {
	case "views":
		sort.SliceStable(top, func(i, j int) bool { return top[i].Views > top[j].Views })
	case "engagement":
		sort.SliceStable(top, func(i, j int) bool { return top[i].EngagementScore > top[j].EngagementScore })
	default: // attendees
		sort.SliceStable(top, func(i, j int) bool { return top[i].Attendees > top[j].Attendees })
	}

	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *analyticsService) UserActivity(ctx context.Context, role domain.Role) (*domain.UserActivityStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	stats := &domain.UserActivityStats{TotalUsers: len(users)}
	var students, organizers []*domain.User
	for _, user := range users {
		switch user.Role {
		case domain.RoleStudent:
			stats.StudentCount++
			students = append(students, user)
		case domain.RoleOrganizer:
			stats.OrganizerCount++
			organizers = append(organizers, user)
		case domain.RoleAdmin:
			stats.AdminCount++
		}
	}

	sort.SliceStable(students, func(i, j int) bool {
		return students[i].Stats.EventsAttended > students[j].Stats.EventsAttended
	})
	sort.SliceStable(organizers, func(i, j int) bool {
		return organizers[i].Stats.EventsOrganized > organizers[j].Stats.EventsOrganized
	})

	stats.ActiveStudents = []domain.ActiveUser{}
	for i, user := range students {
		if i == 5 {
			break
		}
		stats.ActiveStudents = append(stats.ActiveStudents, domain.ActiveUser{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			EventsAttended: user.Stats.EventsAttended,
			Badges:         len(user.Badges),
		})
	}
	stats.ActiveOrganizers = []domain.ActiveUser{}
	for i, user := range organizers {
		if i == 5 {
			break
		}
		stats.ActiveOrganizers = append(stats.ActiveOrganizers, domain.ActiveUser{
			ID:              user.ID,
			Name:            user.Name,
			Email:           user.Email,
			EventsOrganized: user.Stats.EventsOrganized,
			Badges:          len(user.Badges),
		})
	}
	return stats, nil
}

func (s *analyticsService) EventAttendance(ctx context.Context, eventID, actorID string, role domain.Role) (*domain.EventAttendance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if role != domain.RoleAdmin && event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}

	attendees, err := s.eventRepo.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.AttendeeRecord{}
	}
	for _, attendee := range attendees {
		if attendee.Department == "" {
			attendee.Department = "N/A"
		}
		if attendee.Year == "" {
			attendee.Year = "N/A"
		}
	}

	report := &domain.EventAttendance{
		EventID:        event.ID,
		EventTitle:     event.Title,
		EventDate:      event.Date,
		Capacity:       event.Capacity,
		TotalAttendees: len(attendees),
		Attendees:      attendees,
	}
	if event.Capacity != nil && *event.Capacity > 0 {
		utilization := int(math.Round(float64(len(attendees)) / float64(*event.Capacity) * 100))
		report.CapacityUtilization = &utilization
	}
	return report, nil
}

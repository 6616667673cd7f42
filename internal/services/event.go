package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

// popularOrganizerThreshold is the attendee count at which the organizer's
// context-dependent badge becomes reachable; below it the extra evaluation
// round is skipped.
const popularOrganizerThreshold = 50

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	badges         domain.BadgeEngine
	emailService   domain.EmailService
	media          domain.MediaStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given dependencies.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	badges domain.BadgeEngine,
	emailService domain.EmailService,
	media domain.MediaStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		badges:         badges,
		emailService:   emailService,
		media:          media,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func validateEventInput(input domain.EventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	if !domain.ValidCategory(input.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, input.Category)
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	if input.Status != "" && !domain.ValidEventStatus(input.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, ownerID string, input domain.EventInput, banner *domain.Upload) (*domain.Event, []domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEventInput(input); err != nil {
		return nil, nil, err
	}
	status := domain.EventStatus(input.Status)
	if input.Status == "" {
		status = domain.StatusPublished
	}

	event := domain.NewEvent(
		strings.TrimSpace(input.Title),
		strings.TrimSpace(input.Description),
		input.Date,
		strings.TrimSpace(input.Location),
		input.Category,
		input.Capacity,
		status,
		ownerID,
		time.Now(),
	)

	if banner != nil {
		url, err := s.media.Upload(ctx, "event_banners", banner)
		if err != nil {
			return nil, nil, fmt.Errorf("upload banner: %w", err)
		}
		if url != "" {
			event.Banner = &url
		}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}

	_, newBadges, err := s.badges.IncrementStat(ctx, ownerID, domain.StatEventsOrganized, 1, nil)
	if err != nil {
		// The event exists; losing the stat bump is logged, not fatal.
		s.logger.Warn("failed to update organizer stats", "user_id", ownerID, "error", err)
	}

	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload created event: %w", err)
	}
	return created, newBadges, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id, viewerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if viewerID != "" {
		if err := s.eventRepo.AddView(ctx, id, viewerID); err != nil {
			s.logger.Warn("failed to record event view", "event_id", id, "user_id", viewerID, "error", err)
		} else {
			event, err = s.eventRepo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("reload event: %w", err)
			}
		}
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id, actorID string, actorRole domain.Role, update domain.EventUpdate, banner *domain.Upload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID && actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	// Attendees get notified about title, date, and location changes.
	var changes []string
	if update.Title != nil && *update.Title != event.Title {
		event.Title = strings.TrimSpace(*update.Title)
		changes = append(changes, "Title changed to: "+event.Title)
	}
	if update.Date != nil && !update.Date.Equal(event.Date) {
		event.Date = *update.Date
		changes = append(changes, "Date/Time changed to: "+event.Date.Format("January 2, 2006 3:04 PM"))
	}
	if update.Location != nil && *update.Location != event.Location {
		event.Location = strings.TrimSpace(*update.Location)
		changes = append(changes, "Location changed to: "+event.Location)
	}
	if update.Description != nil {
		event.Description = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		if !domain.ValidCategory(*update.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, *update.Category)
		}
		event.Category = *update.Category
	}
	if update.Capacity != nil {
		if *update.Capacity < 1 {
			return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
		}
		event.Capacity = update.Capacity
	}
	if update.Status != nil {
		if !domain.ValidEventStatus(*update.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *update.Status)
		}
		event.Status = domain.EventStatus(*update.Status)
	}

	if banner != nil {
		url, err := s.media.Upload(ctx, "event_banners", banner)
		if err != nil {
			return nil, fmt.Errorf("upload banner: %w", err)
		}
		if url != "" {
			if event.Banner != nil {
				_ = s.media.Delete(ctx, *event.Banner)
			}
			event.Banner = &url
		}
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	updated, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}

	if len(changes) > 0 && updated.AttendeeCount > 0 {
		go s.notifyAttendees(context.Background(), updated, changes)
	}
	return updated, nil
}

// notifyAttendees emails every attendee about event changes. Per-recipient
// failures are logged and skipped.
func (s *eventService) notifyAttendees(ctx context.Context, event *domain.Event, changes []string) {
	attendees, err := s.eventRepo.ListAttendees(ctx, event.ID)
	if err != nil {
		s.logger.Warn("failed to list attendees for update notification", "event_id", event.ID, "error", err)
		return
	}
	for _, attendee := range attendees {
		user, err := s.userRepo.GetByID(ctx, attendee.ID)
		if err != nil {
			s.logger.Warn("failed to load attendee for update notification", "user_id", attendee.ID, "error", err)
			continue
		}
		if err := s.emailService.SendEventUpdate(ctx, user, event, changes); err != nil {
			s.logger.Warn("failed to send update notification", "user_id", attendee.ID, "error", err)
		}
	}
}

func (s *eventService) Delete(ctx context.Context, id, actorID string, actorRole domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if event.Banner != nil {
		_ = s.media.Delete(ctx, *event.Banner)
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Register(ctx context.Context, eventID, userID string) (*domain.Event, []domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.StatusPublished {
		return nil, nil, domain.ErrEventNotPublished
	}

	// Checked before the capacity guard so a repeat registration on a full
	// event still reports the duplicate, not the capacity.
	registered, err := s.eventRepo.IsAttendee(ctx, eventID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("check registration: %w", err)
	}
	if registered {
		return nil, nil, domain.ErrAlreadyRegistered
	}

	// AddAttendee enforces capacity under a row lock; concurrent
	// registrations cannot overshoot it.
	if err := s.eventRepo.AddAttendee(ctx, eventID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, nil, domain.ErrAlreadyRegistered
		case errors.Is(err, domain.ErrEventFull):
			return nil, nil, domain.ErrEventFull
		}
		return nil, nil, fmt.Errorf("add attendee: %w", err)
	}
	metrics.Registrations.Inc()

	_, newBadges, err := s.badges.IncrementStat(ctx, userID, domain.StatEventsAttended, 1, nil)
	if err != nil {
		s.logger.Warn("failed to update attendee stats", "user_id", userID, "error", err)
	}

	count, err := s.eventRepo.CountAttendees(ctx, eventID)
	if err != nil {
		s.logger.Warn("failed to count attendees", "event_id", eventID, "error", err)
		count = event.AttendeeCount + 1
	}
	if count >= popularOrganizerThreshold {
		if _, err := s.badges.EvaluateBadges(ctx, event.CreatedBy, &domain.BadgeContext{AttendeesCount: count}); err != nil {
			s.logger.Warn("failed to evaluate organizer badges", "user_id", event.CreatedBy, "error", err)
		}
	}

	event.AttendeeCount = count

	// Registration emails must not block or fail the registration.
	go s.sendRegistrationEmails(context.Background(), *event, userID)

	return event, newBadges, nil
}

func (s *eventService) sendRegistrationEmails(ctx context.Context, event domain.Event, studentID string) {
	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		s.logger.Warn("failed to load student for registration emails", "user_id", studentID, "error", err)
		return
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, student, &event); err != nil {
		s.logger.Warn("failed to send registration confirmation", "user_id", studentID, "error", err)
	}
	organizer, err := s.userRepo.GetByID(ctx, event.CreatedBy)
	if err != nil {
		s.logger.Warn("failed to load organizer for registration notification", "user_id", event.CreatedBy, "error", err)
		return
	}
	if err := s.emailService.SendNewRegistrationNotification(ctx, organizer, &event, student); err != nil {
		s.logger.Warn("failed to send registration notification", "user_id", organizer.ID, "error", err)
	}
}

func (s *eventService) Unregister(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	// Stats and badges already earned stay; unregistering only removes the
	// roster entry.
	if err := s.eventRepo.RemoveAttendee(ctx, eventID, userID); err != nil {
		return fmt.Errorf("remove attendee: %w", err)
	}
	return nil
}

func (s *eventService) MyRegistered(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByAttendee(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) MyCreated(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ToggleFeatured(ctx context.Context, id string, actorRole domain.Role) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event.Featured = !event.Featured
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DashboardStats(ctx context.Context, userID string, role domain.Role) (*domain.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var events []*domain.Event
	var err error
	if role == domain.RoleAdmin {
		events, err = s.eventRepo.List(ctx, domain.EventFilter{})
	} else {
		events, err = s.eventRepo.ListByOwner(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	stats := &domain.DashboardStats{TotalEvents: len(events)}
	for _, event := range events {
		switch event.Status {
		case domain.StatusPublished:
			stats.PublishedEvents++
		case domain.StatusDraft:
			stats.DraftEvents++
		}
		stats.TotalRegistrations += event.AttendeeCount
	}
	return stats, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

type reminderService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewReminderService creates a ReminderService over the event and user
// repositories.
func NewReminderService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ReminderService {
	return &reminderService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *reminderService) SendDueReminders(ctx context.Context) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Events starting 24 hours out, with a one hour tolerance either side.
	now := s.now()
	from := now.Add(23 * time.Hour)
	to := now.Add(25 * time.Hour)

	events, err := s.eventRepo.ListStartingBetween(ctx, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	s.logger.Info("reminder batch started", "events", len(events))

	var sent, failed int
	for _, event := range events {
		attendees, err := s.eventRepo.ListAttendees(ctx, event.ID)
		if err != nil {
			s.logger.Warn("failed to list attendees for reminders", "event_id", event.ID, "error", err)
			continue
		}
		for _, attendee := range attendees {
			user, err := s.userRepo.GetByID(ctx, attendee.ID)
			if err != nil {
				s.logger.Warn("failed to load attendee for reminder", "user_id", attendee.ID, "error", err)
				failed++
				continue
			}
			if err := s.emailService.SendEventReminder(ctx, user, event); err != nil {
				s.logger.Warn("failed to send reminder", "user_id", attendee.ID, "event_id", event.ID, "error", err)
				failed++
				continue
			}
			sent++
		}
	}

	metrics.RemindersSent.Add(float64(sent))
	metrics.RemindersFailed.Add(float64(failed))
	s.logger.Info("reminder batch complete", "sent", sent, "failed", failed)
	return sent, failed, nil
}

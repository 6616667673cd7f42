package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"campusevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	appURL   string
}

// NewEmailService returns an EmailService that uses the given Mailer and
// template renderer. appURL is the public frontend URL used for links.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, appURL string) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// wantsEmail reports whether the user's preferences allow the given category.
// Emails are globally gated by Enabled; the welcome email ignores preferences.
func wantsEmail(user *domain.User, pick func(domain.NotificationPreferences) bool) bool {
	if !user.Notifications.Enabled {
		return false
	}
	return pick(user.Notifications)
}

func (s *emailService) eventURL(eventID string) string {
	return s.appURL + "/events/" + eventID
}

type welcomeEmailData struct {
	Name        string
	Role        string
	IsOrganizer bool
	AppURL      string
}

func (s *emailService) SendWelcome(ctx context.Context, user *domain.User) error {
	data := welcomeEmailData{
		Name:        user.Name,
		Role:        strings.ToUpper(string(user.Role)),
		IsOrganizer: user.Role == domain.RoleOrganizer,
		AppURL:      s.appURL,
	}
	if err := s.send(user.Email, "welcome", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Welcome email sent to %s", user.Email)
	return nil
}

type eventEmailData struct {
	Name          string
	EventTitle    string
	EventDate     string
	EventTime     string
	EventLocation string
	EventCategory string
	Banner        string
	AttendeeCount int
	Capacity      int
	EventURL      string
	Changes       []string
}

func (s *emailService) eventData(name string, event *domain.Event) eventEmailData {
	data := eventEmailData{
		Name:          name,
		EventTitle:    event.Title,
		EventDate:     event.Date.Format("Monday, January 2, 2006"),
		EventTime:     event.Date.Format("3:04 PM"),
		EventLocation: event.Location,
		EventCategory: event.Category,
		AttendeeCount: event.AttendeeCount,
		EventURL:      s.eventURL(event.ID),
	}
	if event.Banner != nil {
		data.Banner = *event.Banner
	}
	if event.Capacity != nil {
		data.Capacity = *event.Capacity
	}
	return data
}

func (s *emailService) SendRegistrationConfirmation(ctx context.Context, user *domain.User, event *domain.Event) error {
	if !wantsEmail(user, func(p domain.NotificationPreferences) bool { return p.EventReminders }) {
		log.Printf("[EMAIL] Skipping registration confirmation for %s (user preference)", user.Email)
		return nil
	}
	data := s.eventData(user.Name, event)
	if err := s.send(user.Email, "registration_confirmation", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", user.Email)
	return nil
}

type newRegistrationEmailData struct {
	Name              string
	EventTitle        string
	EventDate         string
	AttendeeCount     int
	Capacity          int
	StudentName       string
	StudentEmail      string
	StudentDepartment string
	StudentYear       string
	EventURL          string
}

func (s *emailService) SendNewRegistrationNotification(ctx context.Context, organizer *domain.User, event *domain.Event, student *domain.User) error {
	if !wantsEmail(organizer, func(p domain.NotificationPreferences) bool { return p.Registrations }) {
		log.Printf("[EMAIL] Skipping registration notification for %s (user preference)", organizer.Email)
		return nil
	}
	data := newRegistrationEmailData{
		Name:              organizer.Name,
		EventTitle:        event.Title,
		EventDate:         event.Date.Format("Monday, January 2, 2006"),
		AttendeeCount:     event.AttendeeCount,
		StudentName:       student.Name,
		StudentEmail:      student.Email,
		StudentDepartment: student.Profile.Department,
		StudentYear:       student.Profile.Year,
		EventURL:          s.eventURL(event.ID),
	}
	if event.Capacity != nil {
		data.Capacity = *event.Capacity
	}
	if err := s.send(organizer.Email, "new_registration", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] New registration notification sent to %s", organizer.Email)
	return nil
}

func (s *emailService) SendEventUpdate(ctx context.Context, user *domain.User, event *domain.Event, changes []string) error {
	if !wantsEmail(user, func(p domain.NotificationPreferences) bool { return p.EventUpdates }) {
		log.Printf("[EMAIL] Skipping event update for %s (user preference)", user.Email)
		return nil
	}
	data := s.eventData(user.Name, event)
	data.Changes = changes
	if err := s.send(user.Email, "event_update", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Event update sent to %s", user.Email)
	return nil
}

func (s *emailService) SendEventReminder(ctx context.Context, user *domain.User, event *domain.Event) error {
	if !wantsEmail(user, func(p domain.NotificationPreferences) bool { return p.EventReminders }) {
		log.Printf("[EMAIL] Skipping event reminder for %s (user preference)", user.Email)
		return nil
	}
	data := s.eventData(user.Name, event)
	if err := s.send(user.Email, "event_reminder", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Event reminder sent to %s", user.Email)
	return nil
}

type newCommentEmailData struct {
	Name           string
	EventTitle     string
	CommenterName  string
	CommentContent string
	EventURL       string
}

func (s *emailService) SendNewCommentNotification(ctx context.Context, organizer *domain.User, event *domain.Event, comment *domain.Comment, commenter *domain.User) error {
	if !wantsEmail(organizer, func(p domain.NotificationPreferences) bool { return p.Comments }) {
		log.Printf("[EMAIL] Skipping comment notification for %s (user preference)", organizer.Email)
		return nil
	}
	data := newCommentEmailData{
		Name:           organizer.Name,
		EventTitle:     event.Title,
		CommenterName:  commenter.Name,
		CommentContent: comment.Content,
		EventURL:       s.eventURL(event.ID) + "#comments",
	}
	if err := s.send(organizer.Email, "new_comment", data); err != nil {
		return err
	}
	log.Printf("[EMAIL] New comment notification sent to %s", organizer.Email)
	return nil
}

func (s *emailService) send(to, templateName string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}

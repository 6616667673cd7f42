package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EmailService composes and sends the platform's notification emails. Every
// method honors the recipient's notification preferences; a skipped send is
// not an error. Callers treat email failures as non-fatal: the triggering
// action succeeds regardless.
type EmailService interface {
	SendWelcome(ctx context.Context, user *User) error
	SendRegistrationConfirmation(ctx context.Context, user *User, event *Event) error
	SendNewRegistrationNotification(ctx context.Context, organizer *User, event *Event, student *User) error
	SendEventUpdate(ctx context.Context, user *User, event *Event, changes []string) error
	SendEventReminder(ctx context.Context, user *User, event *Event) error
	SendNewCommentNotification(ctx context.Context, organizer *User, event *Event, comment *Comment, commenter *User) error
}

// ReminderService sends reminder emails for events starting roughly 24 hours
// out. Driven by the daily scheduled job.
type ReminderService interface {
	// SendDueReminders scans published events starting in the 23h-25h window
	// and emails each attendee sequentially. Per-recipient failures are
	// counted and logged; the batch continues.
	SendDueReminders(ctx context.Context) (sent, failed int, err error)
}

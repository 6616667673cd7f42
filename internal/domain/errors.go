package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories map
// driver-level errors onto these; controllers map them onto HTTP statuses.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidGrant      = errors.New("invalid email or password")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrEventNotPublished = errors.New("cannot register for this event")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is full")
	ErrCommentDeleted    = errors.New("comment is deleted")
	ErrNestedReply       = errors.New("cannot reply to a reply")
	ErrAlreadyReported   = errors.New("comment already reported by this user")
	ErrBadgeAlreadyHeld  = errors.New("user already has this badge")
)

package domain

import (
	"context"
	"time"
)

// Role is an application role.
type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether code is one of the known roles.
func ValidRole(code string) bool {
	switch Role(code) {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// SocialLinks holds a user's external profile links.
type SocialLinks struct {
	Linkedin  string `json:"linkedin"`
	Github    string `json:"github"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

// Profile is the extended profile sub-record of a user.
// swagger:model Profile
type Profile struct {
	Avatar      string      `json:"avatar"`
	Bio         string      `json:"bio"`
	Phone       string      `json:"phone"`
	Department  string      `json:"department"`
	Year        string      `json:"year"`
	Interests   []string    `json:"interests"`
	SocialLinks SocialLinks `json:"social_links"`
}

// Stats are the per-user progress counters driving badge evaluation.
// They are monotonically non-decreasing.
type Stats struct {
	EventsAttended int `json:"events_attended"`
	EventsOrganized int `json:"events_organized"`
	CommentsPosted int `json:"comments_posted"`
}

// Badge is a one-time achievement earned by a user.
// swagger:model Badge
type Badge struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// NotificationPreferences controls which emails a user receives.
type NotificationPreferences struct {
	Enabled        bool `json:"enabled"`
	EventReminders bool `json:"event_reminders"`
	EventUpdates   bool `json:"event_updates"`
	Comments       bool `json:"comments"`
	Registrations  bool `json:"registrations"`
}

// DefaultNotificationPreferences are the opt-in defaults for new users.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:        true,
		EventReminders: true,
		EventUpdates:   true,
		Comments:       true,
		Registrations:  true,
	}
}

// User represents a registered user
// swagger:model User
type User struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Email         string                  `json:"email"`
	PasswordHash  string                  `json:"-"`
	Salt          string                  `json:"-"`
	Role          Role                    `json:"role"`
	Profile       Profile                 `json:"profile"`
	Stats         Stats                   `json:"stats"`
	Badges        []Badge                 `json:"badges"`
	Notifications NotificationPreferences `json:"notification_preferences"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewUser returns a new User with default preferences and zeroed stats.
// ID is set by the repository on create.
func NewUser(name, email, passwordHash, salt string, role Role, createdAt time.Time) *User {
	return &User{
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Salt:          salt,
		Role:          role,
		Profile:       Profile{Interests: []string{}},
		Badges:        []Badge{},
		Notifications: DefaultNotificationPreferences(),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

// UserSummary is the subset of user fields embedded in other resources
// (event owner, comment author).
type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (userID string, role Role, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, profile Profile) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdateNotificationPreferences(ctx context.Context, userID string, prefs NotificationPreferences) error
	ListAll(ctx context.Context) ([]*User, error)

	UserStatsRepository
}

// UserStatsRepository is the storage surface the badge engine depends on.
type UserStatsRepository interface {
	GetStats(ctx context.Context, userID string) (Stats, error)
	UpdateStats(ctx context.Context, userID string, stats Stats) error
	ListBadges(ctx context.Context, userID string) ([]Badge, error)
	// AwardBadge appends the badge unless the user already holds one with
	// the same name. Returns true if a new badge row was inserted.
	AwardBadge(ctx context.Context, userID string, badge Badge) (bool, error)
}

// AuthService defines signup and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

// ProfileUpdate carries the updatable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Bio         *string      `json:"bio"`
	Phone       *string      `json:"phone"`
	Department  *string      `json:"department"`
	Year        *string      `json:"year"`
	Interests   *[]string    `json:"interests"`
	SocialLinks *SocialLinks `json:"social_links"`
}

// UserService defines profile, history, and badge operations.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
	UploadAvatar(ctx context.Context, userID string, upload *Upload) (avatarURL string, err error)
	EventHistory(ctx context.Context, userID string) (attended, organized []*Event, err error)
	UpdateNotificationPreferences(ctx context.Context, userID string, prefs NotificationPreferences) (*User, error)
	// AwardBadge manually grants a badge (admin use). ErrBadgeAlreadyHeld
	// when the user already has a badge with the same name.
	AwardBadge(ctx context.Context, userID string, badge Badge) (*Badge, error)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	eventRepo      domain.EventRepository
	media          domain.MediaStore
	contextTimeout time.Duration
}

// NewUserService creates a UserService backed by the given repositories and
// media store.
func NewUserService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	media domain.MediaStore,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		media:          media,
		contextTimeout: timeout,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	profile := user.Profile
	if update.Bio != nil {
		profile.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.Phone != nil {
		profile.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Department != nil {
		profile.Department = strings.TrimSpace(*update.Department)
	}
	if update.Year != nil {
		profile.Year = strings.TrimSpace(*update.Year)
	}
	if update.Interests != nil {
		profile.Interests = *update.Interests
		if profile.Interests == nil {
			profile.Interests = []string{}
		}
	}
	if update.SocialLinks != nil {
		profile.SocialLinks = *update.SocialLinks
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user.Profile = profile
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID string, upload *domain.Upload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if upload == nil {
		return "", fmt.Errorf("%w: no file provided", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", fmt.Errorf("%w: avatar must be an image", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	url, err := s.media.Upload(ctx, "avatars", upload)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", fmt.Errorf("update avatar: %w", err)
	}

	// Old avatar is best-effort cleanup; ignore failures.
	if user.Profile.Avatar != "" && user.Profile.Avatar != url {
		_ = s.media.Delete(ctx, user.Profile.Avatar)
	}
	return url, nil
}

func (s *userService) EventHistory(ctx context.Context, userID string) ([]*domain.Event, []*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attended, err := s.eventRepo.ListByAttendee(ctx, userID, false)
	if err != nil {
		return nil, nil, fmt.Errorf("list attended events: %w", err)
	}
	organized, err := s.eventRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list organized events: %w", err)
	}
	if attended == nil {
		attended = []*domain.Event{}
	}
	if organized == nil {
		organized = []*domain.Event{}
	}
	return attended, organized, nil
}

func (s *userService) UpdateNotificationPreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.userRepo.UpdateNotificationPreferences(ctx, userID, prefs); err != nil {
		return nil, fmt.Errorf("update notification preferences: %w", err)
	}
	user.Notifications = prefs
	return user, nil
}

func (s *userService) AwardBadge(ctx context.Context, userID string, badge domain.Badge) (*domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(badge.Name) == "" {
		return nil, fmt.Errorf("%w: badge name is required", domain.ErrInvalidInput)
	}
	if badge.EarnedAt.IsZero() {
		badge.EarnedAt = time.Now()
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	inserted, err := s.userRepo.AwardBadge(ctx, userID, badge)
	if err != nil {
		return nil, fmt.Errorf("award badge: %w", err)
	}
	if !inserted {
		return nil, domain.ErrBadgeAlreadyHeld
	}
	return &badge, nil
}

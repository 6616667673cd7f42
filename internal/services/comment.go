package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type commentService struct {
	commentRepo    domain.CommentRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	badges         domain.BadgeEngine
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCommentService creates a CommentService with the given dependencies.
func NewCommentService(
	commentRepo domain.CommentRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	badges domain.BadgeEngine,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CommentService {
	return &commentService{
		commentRepo:    commentRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		badges:         badges,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func validateCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("%w: comment content is required", domain.ErrInvalidInput)
	}
	if len([]rune(content)) > domain.MaxCommentLength {
		return "", fmt.Errorf("%w: comment must be %d characters or less", domain.ErrInvalidInput, domain.MaxCommentLength)
	}
	return trimmed, nil
}

func (s *commentService) Create(ctx context.Context, eventID, userID, content string) (*domain.Comment, []domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	trimmed, err := validateCommentContent(content)
	if err != nil {
		return nil, nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}

	comment := domain.NewComment(eventID, userID, trimmed, nil, time.Now())
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, nil, fmt.Errorf("create comment: %w", err)
	}

	_, newBadges, err := s.badges.IncrementStat(ctx, userID, domain.StatCommentsPosted, 1, nil)
	if err != nil {
		s.logger.Warn("failed to update commenter stats", "user_id", userID, "error", err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload comment: %w", err)
	}

	// The organizer hears about comments on their event, except their own.
	if event.CreatedBy != userID {
		go s.notifyOrganizer(context.Background(), event, created, userID)
	}
	return created, newBadges, nil
}

func (s *commentService) notifyOrganizer(ctx context.Context, event *domain.Event, comment *domain.Comment, commenterID string) {
	organizer, err := s.userRepo.GetByID(ctx, event.CreatedBy)
	if err != nil {
		s.logger.Warn("failed to load organizer for comment notification", "user_id", event.CreatedBy, "error", err)
		return
	}
	commenter, err := s.userRepo.GetByID(ctx, commenterID)
	if err != nil {
		s.logger.Warn("failed to load commenter for comment notification", "user_id", commenterID, "error", err)
		return
	}
	if err := s.emailService.SendNewCommentNotification(ctx, organizer, event, comment, commenter); err != nil {
		s.logger.Warn("failed to send comment notification", "user_id", organizer.ID, "error", err)
	}
}

func (s *commentService) ListForEvent(ctx context.Context, eventID, viewerID string, sort domain.CommentSort) ([]*domain.Comment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}

	switch sort {
	case domain.SortLatest, domain.SortOldest, domain.SortLikes:
	default:
		sort = domain.SortLatest
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, eventID, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	for _, comment := range comments {
		replies, err := s.commentRepo.ListReplies(ctx, comment.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("list replies: %w", err)
		}
		comment.Replies = replies
		if err := s.markLiked(ctx, comment, viewerID); err != nil {
			return nil, 0, err
		}
		for _, reply := range replies {
			if err := s.markLiked(ctx, reply, viewerID); err != nil {
				return nil, 0, err
			}
		}
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, len(comments), nil
}

func (s *commentService) markLiked(ctx context.Context, comment *domain.Comment, viewerID string) error {
	if viewerID == "" {
		return nil
	}
	liked, err := s.commentRepo.HasLiked(ctx, comment.ID, viewerID)
	if err != nil {
		return fmt.Errorf("check like: %w", err)
	}
	comment.IsLiked = liked
	return nil
}

func (s *commentService) Edit(ctx context.Context, commentID, userID, content string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment.IsDeleted {
		return nil, domain.ErrCommentDeleted
	}
	if comment.UserID != userID {
		return nil, domain.ErrForbidden
	}

	trimmed, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateContent(ctx, commentID, trimmed); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	updated, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return updated, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if comment.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *commentService) ToggleLike(ctx context.Context, commentID, userID string) (bool, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, 0, domain.ErrNotFound
		}
		return false, 0, fmt.Errorf("get comment: %w", err)
	}
	if comment.IsDeleted {
		return false, 0, domain.ErrCommentDeleted
	}

	liked, err := s.commentRepo.HasLiked(ctx, commentID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("check like: %w", err)
	}
	if liked {
		if err := s.commentRepo.RemoveLike(ctx, commentID, userID); err != nil {
			return false, 0, fmt.Errorf("remove like: %w", err)
		}
	} else {
		if err := s.commentRepo.AddLike(ctx, commentID, userID); err != nil {
			return false, 0, fmt.Errorf("add like: %w", err)
		}
	}

	count, err := s.commentRepo.CountLikes(ctx, commentID)
	if err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}
	return !liked, count, nil
}

func (s *commentService) Reply(ctx context.Context, parentID, userID, content string) (*domain.Comment, []domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get parent comment: %w", err)
	}
	if parent.IsDeleted {
		return nil, nil, domain.ErrCommentDeleted
	}
	// Threads are one level deep.
	if parent.ParentID != nil {
		return nil, nil, domain.ErrNestedReply
	}

	trimmed, err := validateCommentContent(content)
	if err != nil {
		return nil, nil, err
	}

	reply := domain.NewComment(parent.EventID, userID, trimmed, &parent.ID, time.Now())
	if err := s.commentRepo.Create(ctx, reply); err != nil {
		return nil, nil, fmt.Errorf("create reply: %w", err)
	}

	_, newBadges, err := s.badges.IncrementStat(ctx, userID, domain.StatCommentsPosted, 1, nil)
	if err != nil {
		s.logger.Warn("failed to update commenter stats", "user_id", userID, "error", err)
	}

	created, err := s.commentRepo.GetByID(ctx, reply.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload reply: %w", err)
	}
	return created, newBadges, nil
}

func (s *commentService) Report(ctx context.Context, commentID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if comment.IsDeleted {
		return domain.ErrCommentDeleted
	}

	added, err := s.commentRepo.AddReport(ctx, commentID, userID)
	if err != nil {
		return fmt.Errorf("report comment: %w", err)
	}
	if !added {
		return domain.ErrAlreadyReported
	}
	return nil
}

// canModerate reports whether the actor may moderate comments on the event:
// admins anywhere, organizers on their own events.
func (s *commentService) canModerate(ctx context.Context, eventID, actorID string, actorRole domain.Role) error {
	if actorRole == domain.RoleAdmin {
		return nil
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatedBy != actorID {
		return domain.ErrForbidden
	}
	return nil
}

func (s *commentService) TogglePin(ctx context.Context, commentID, actorID string, actorRole domain.Role) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get comment: %w", err)
	}
	if err := s.canModerate(ctx, comment.EventID, actorID, actorRole); err != nil {
		return false, err
	}

	pinned := !comment.IsPinned
	if err := s.commentRepo.SetPinned(ctx, commentID, pinned); err != nil {
		return false, fmt.Errorf("set pinned: %w", err)
	}
	return pinned, nil
}

func (s *commentService) ModerateDelete(ctx context.Context, commentID, actorID string, actorRole domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if err := s.canModerate(ctx, comment.EventID, actorID, actorRole); err != nil {
		return err
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	// Top-level deletion takes the whole thread down with it.
	if comment.ParentID == nil {
		if err := s.commentRepo.SoftDeleteReplies(ctx, commentID); err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}
	}
	return nil
}

func (s *commentService) ListReported(ctx context.Context, actorID string, actorRole domain.Role) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	switch actorRole {
	case domain.RoleAdmin:
		comments, err := s.commentRepo.ListReported(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list reported comments: %w", err)
		}
		return comments, nil
	case domain.RoleOrganizer:
		comments, err := s.commentRepo.ListReported(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("list reported comments: %w", err)
		}
		return comments, nil
	default:
		return nil, domain.ErrForbidden
	}
}

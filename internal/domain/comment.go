package domain

import (
	"context"
	"time"
)

// MaxCommentLength is the maximum accepted comment length in characters.
const MaxCommentLength = 500

// CommentSort selects the ordering of a comment listing.
type CommentSort string

const (
	SortLatest CommentSort = "latest"
	SortOldest CommentSort = "oldest"
	SortLikes  CommentSort = "likes"
)

// Comment is a depth-1 threaded comment on an event. Deleted comments are
// kept as tombstones so reply threads stay intact.
// swagger:model Comment
type Comment struct {
	ID       string       `json:"id"`
	EventID  string       `json:"event_id"`
	UserID   string       `json:"user_id"`
	Author   *UserSummary `json:"author,omitempty"`
	Content  string       `json:"content"`
	ParentID *string      `json:"parent_id"`
	// LikeCount is derived from the like set; IsLiked is computed for the
	// requesting user.
	LikeCount  int        `json:"likes_count"`
	IsLiked    bool       `json:"is_liked"`
	IsPinned   bool       `json:"is_pinned"`
	IsReported bool       `json:"is_reported"`
	IsDeleted  bool       `json:"is_deleted"`
	Replies    []*Comment `json:"replies,omitempty"`
	// EventTitle is filled on moderation listings.
	EventTitle string    `json:"event_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewComment returns a new top-level comment. ID is set by the repository on
// create; pass a reply's parent via parentID.
func NewComment(eventID, userID, content string, parentID *string, createdAt time.Time) *Comment {
	return &Comment{
		EventID:   eventID,
		UserID:    userID,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// CommentRepository defines storage operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	// ListTopLevel returns non-deleted top-level comments for the event in
	// the requested order (latest puts pinned comments first).
	ListTopLevel(ctx context.Context, eventID string, sort CommentSort) ([]*Comment, error)
	ListReplies(ctx context.Context, parentID string) ([]*Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteReplies(ctx context.Context, parentID string) error

	HasLiked(ctx context.Context, commentID, userID string) (bool, error)
	AddLike(ctx context.Context, commentID, userID string) error
	RemoveLike(ctx context.Context, commentID, userID string) error
	CountLikes(ctx context.Context, commentID string) (int, error)

	// AddReport records a report by userID; returns false when this user
	// already reported the comment.
	AddReport(ctx context.Context, commentID, userID string) (bool, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
	// ListReported returns reported, non-deleted comments; ownerID scopes to
	// events owned by that user, "" means all events.
	ListReported(ctx context.Context, ownerID string) ([]*Comment, error)
}

// CommentService defines comment CRUD, engagement, and moderation.
type CommentService interface {
	Create(ctx context.Context, eventID, userID, content string) (*Comment, []Badge, error)
	// ListForEvent returns top-level comments with nested replies; viewerID
	// ("" for none) is used to compute IsLiked. The int is the top-level count.
	ListForEvent(ctx context.Context, eventID, viewerID string, sort CommentSort) ([]*Comment, int, error)
	Edit(ctx context.Context, commentID, userID, content string) (*Comment, error)
	Delete(ctx context.Context, commentID, userID string) error
	ToggleLike(ctx context.Context, commentID, userID string) (liked bool, likeCount int, err error)
	Reply(ctx context.Context, parentID, userID, content string) (*Comment, []Badge, error)
	Report(ctx context.Context, commentID, userID string) error
	TogglePin(ctx context.Context, commentID, actorID string, actorRole Role) (pinned bool, err error)
	ModerateDelete(ctx context.Context, commentID, actorID string, actorRole Role) error
	ListReported(ctx context.Context, actorID string, actorRole Role) ([]*Comment, error)
}

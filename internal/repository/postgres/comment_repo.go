package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

const commentSelect = `
	SELECT c.id, c.event_id, c.user_id, c.content, c.parent_id,
		c.is_pinned, c.is_reported, c.is_deleted, c.created_at, c.updated_at,
		u.id, u.name, u.email, u.role, u.avatar,
		(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS like_count
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

func scanComment(row interface{ Scan(...any) error }) (*domain.Comment, error) {
	c := &domain.Comment{Author: &domain.UserSummary{}}
	var parentID sql.NullString
	err := row.Scan(
		&c.ID, &c.EventID, &c.UserID, &c.Content, &parentID,
		&c.IsPinned, &c.IsReported, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Role, &c.Author.Avatar,
		&c.LikeCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return c, nil
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...any) ([]*domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, user_id, content, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var parentID sql.NullString
	if c.ParentID != nil {
		parentID = sql.NullString{String: *c.ParentID, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		c.EventID, c.UserID, c.Content, parentID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.DB.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
}

func (r *commentRepository) ListTopLevel(ctx context.Context, eventID string, sort domain.CommentSort) ([]*domain.Comment, error) {
	query := commentSelect + ` WHERE c.event_id = $1 AND c.parent_id IS NULL AND c.is_deleted = FALSE`
	switch sort {
	case domain.SortOldest:
		query += ` ORDER BY c.created_at ASC`
	case domain.SortLikes:
		query += ` ORDER BY like_count DESC, c.created_at DESC`
	default:
		// Latest, pinned first.
		query += ` ORDER BY c.is_pinned DESC, c.created_at DESC`
	}
	return r.queryComments(ctx, query, eventID)
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID string) ([]*domain.Comment, error) {
	query := commentSelect + ` WHERE c.parent_id = $1 AND c.is_deleted = FALSE ORDER BY c.created_at ASC`
	return r.queryComments(ctx, query, parentID)
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2`, content, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) SoftDeleteReplies(ctx context.Context, parentID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET is_deleted = TRUE, updated_at = NOW() WHERE parent_id = $1`, parentID)
	return err
}

func (r *commentRepository) HasLiked(ctx context.Context, commentID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM comment_likes WHERE comment_id = $1 AND user_id = $2)`,
		commentID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *commentRepository) AddLike(ctx context.Context, commentID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		commentID, userID)
	return err
}

func (r *commentRepository) RemoveLike(ctx context.Context, commentID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	return err
}

func (r *commentRepository) CountLikes(ctx context.Context, commentID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comment_likes WHERE comment_id = $1`, commentID).Scan(&count)
	return count, err
}

func (r *commentRepository) AddReport(ctx context.Context, commentID, userID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO comment_reports (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		commentID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE comments SET is_reported = TRUE, updated_at = NOW() WHERE id = $1`, commentID)
	if err != nil {
		return true, err
	}
	return true, nil
}

func (r *commentRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET is_pinned = $1, updated_at = NOW() WHERE id = $2`, pinned, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListReported(ctx context.Context, ownerID string) ([]*domain.Comment, error) {
	query := `
		SELECT c.id, c.event_id, c.user_id, c.content, c.parent_id,
			c.is_pinned, c.is_reported, c.is_deleted, c.created_at, c.updated_at,
			u.id, u.name, u.email, u.role, u.avatar,
			(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS like_count,
			e.title
		FROM comments c
		JOIN users u ON u.id = c.user_id
		JOIN events e ON e.id = c.event_id
		WHERE c.is_reported = TRUE AND c.is_deleted = FALSE
	`
	args := []any{}
	if ownerID != "" {
		query += ` AND e.created_by = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{Author: &domain.UserSummary{}}
		var parentID sql.NullString
		err := rows.Scan(
			&c.ID, &c.EventID, &c.UserID, &c.Content, &parentID,
			&c.IsPinned, &c.IsReported, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Role, &c.Author.Avatar,
			&c.LikeCount, &c.EventTitle,
		)
		if err != nil {
			return nil, err
		}
		if parentID.Valid {
			c.ParentID = &parentID.String
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

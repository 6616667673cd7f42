package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventSelect = `
	SELECT e.id, e.title, e.description, e.date, e.location, e.category,
		e.capacity, e.banner, e.status, e.featured, e.created_by, e.created_at, e.updated_at,
		u.id, u.name, u.email, u.role,
		(SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = e.id) AS attendee_count,
		(SELECT COUNT(*) FROM event_views v WHERE v.event_id = e.id) AS view_count
	FROM events e
	JOIN users u ON u.id = e.created_by
`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{Owner: &domain.UserSummary{}}
	var capacity sql.NullInt64
	var banner sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Category,
		&capacity, &banner, &e.Status, &e.Featured, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		&e.Owner.ID, &e.Owner.Name, &e.Owner.Email, &e.Owner.Role,
		&e.AttendeeCount, &e.ViewCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	if banner.Valid {
		e.Banner = &banner.String
	}
	return e, nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, category, capacity, banner, status, featured, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var capacity sql.NullInt64
	if e.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*e.Capacity), Valid: true}
	}
	var banner sql.NullString
	if e.Banner != nil {
		banner = sql.NullString{String: *e.Banner, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.Category,
		capacity, banner, string(e.Status), e.Featured, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
}

func (r *eventRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	conds := []string{}
	args := []any{}
	n := 1
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("e.status = $%d", n))
		args = append(args, f.Status)
		n++
	}
	if f.Category != "" {
		conds = append(conds, fmt.Sprintf("e.category = $%d", n))
		args = append(args, f.Category)
		n++
	}
	if f.CreatedBy != "" {
		conds = append(conds, fmt.Sprintf("e.created_by = $%d", n))
		args = append(args, f.CreatedBy)
		n++
	}
	if f.FeaturedOnly {
		conds = append(conds, "e.featured = TRUE")
	}
	if f.UpcomingOnly {
		conds = append(conds, "e.date >= NOW() AND e.date <= NOW() + INTERVAL '7 days'")
	}
	if f.Search != "" {
		conds = append(conds, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", n, n))
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if !f.CreatedAfter.IsZero() {
		conds = append(conds, fmt.Sprintf("e.created_at >= $%d", n))
		args = append(args, f.CreatedAfter)
		n++
	}

	query := eventSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.PopularFirst {
		query += " ORDER BY view_count DESC, e.date ASC"
	} else {
		query += " ORDER BY e.date ASC"
	}
	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET
			title = $1, description = $2, date = $3, location = $4, category = $5,
			capacity = $6, banner = $7, status = $8, featured = $9, updated_at = NOW()
		WHERE id = $10
	`
	var capacity sql.NullInt64
	if e.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*e.Capacity), Valid: true}
	}
	var banner sql.NullString
	if e.Banner != nil {
		banner = sql.NullString{String: *e.Banner, Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.Category,
		capacity, banner, string(e.Status), e.Featured, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	return r.queryEvents(ctx, eventSelect+` WHERE e.created_by = $1 ORDER BY e.created_at DESC`, ownerID)
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID string, publishedOnly bool) ([]*domain.Event, error) {
	query := eventSelect + ` WHERE e.id IN (SELECT event_id FROM event_attendees WHERE user_id = $1)`
	if publishedOnly {
		query += ` AND e.status = 'published' ORDER BY e.date DESC`
	} else {
		query += ` ORDER BY e.date ASC`
	}
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := eventSelect + ` WHERE e.status = 'published' AND e.date >= $1 AND e.date <= $2 ORDER BY e.date ASC`
	return r.queryEvents(ctx, query, from, to)
}

// AddAttendee registers userID unless the event is at capacity. The event
// row lock serializes registrations per event, so the count read under the
// lock cannot overshoot capacity.
func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var capacity sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if capacity.Valid {
		var count int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`, eventID).Scan(&count)
		if err != nil {
			return err
		}
		if count >= capacity.Int64 {
			return domain.ErrEventFull
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id, created_at) VALUES ($1, $2, NOW())`,
		eventID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}

func (r *eventRepository) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *eventRepository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *eventRepository) ListAttendees(ctx context.Context, eventID string) ([]*domain.AttendeeRecord, error) {
	query := `
		SELECT u.id, u.name, u.email, u.department, u.year
		FROM event_attendees a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.AttendeeRecord, 0)
	for rows.Next() {
		rec := &domain.AttendeeRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Department, &rec.Year); err != nil {
			return nil, err
		}
		attendees = append(attendees, rec)
	}
	return attendees, rows.Err()
}

func (r *eventRepository) AddView(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO event_views (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		eventID, userID)
	return err
}

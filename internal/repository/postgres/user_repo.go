package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, salt, role,
	avatar, bio, phone, department, year, interests,
	linkedin, github, twitter, instagram,
	events_attended, events_organized, comments_posted,
	notify_enabled, notify_event_reminders, notify_event_updates, notify_comments, notify_registrations,
	created_at, updated_at
`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (
			name, email, password_hash, salt, role, interests,
			notify_enabled, notify_event_reminders, notify_event_updates, notify_comments, notify_registrations,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Salt, string(u.Role), pq.Array(u.Profile.Interests),
		u.Notifications.Enabled, u.Notifications.EventReminders, u.Notifications.EventUpdates,
		u.Notifications.Comments, u.Notifications.Registrations,
		u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var interests pq.StringArray
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt, &u.Role,
		&u.Profile.Avatar, &u.Profile.Bio, &u.Profile.Phone, &u.Profile.Department, &u.Profile.Year, &interests,
		&u.Profile.SocialLinks.Linkedin, &u.Profile.SocialLinks.Github,
		&u.Profile.SocialLinks.Twitter, &u.Profile.SocialLinks.Instagram,
		&u.Stats.EventsAttended, &u.Stats.EventsOrganized, &u.Stats.CommentsPosted,
		&u.Notifications.Enabled, &u.Notifications.EventReminders, &u.Notifications.EventUpdates,
		&u.Notifications.Comments, &u.Notifications.Registrations,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Profile.Interests = []string(interests)
	if u.Profile.Interests == nil {
		u.Profile.Interests = []string{}
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := r.scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, err
	}
	u.Badges, err = r.ListBadges(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := r.scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	u.Badges, err = r.ListBadges(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, p domain.Profile) error {
	query := `
		UPDATE users SET
			bio = $1, phone = $2, department = $3, year = $4, interests = $5,
			linkedin = $6, github = $7, twitter = $8, instagram = $9,
			updated_at = NOW()
		WHERE id = $10
	`
	result, err := r.DB.ExecContext(ctx, query,
		p.Bio, p.Phone, p.Department, p.Year, pq.Array(p.Interests),
		p.SocialLinks.Linkedin, p.SocialLinks.Github, p.SocialLinks.Twitter, p.SocialLinks.Instagram,
		userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET avatar = $1, updated_at = NOW() WHERE id = $2`,
		avatarURL, userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateNotificationPreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences) error {
	query := `
		UPDATE users SET
			notify_enabled = $1, notify_event_reminders = $2, notify_event_updates = $3,
			notify_comments = $4, notify_registrations = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query,
		prefs.Enabled, prefs.EventReminders, prefs.EventUpdates, prefs.Comments, prefs.Registrations,
		userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	byID := make(map[string]*domain.User)
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.Badges = []domain.Badge{}
		users = append(users, u)
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One grouped badge query instead of one per user.
	badgeRows, err := r.DB.QueryContext(ctx,
		`SELECT user_id, name, description, icon, earned_at FROM badges ORDER BY user_id, earned_at, id`)
	if err != nil {
		return nil, err
	}
	defer badgeRows.Close()
	for badgeRows.Next() {
		var userID string
		var b domain.Badge
		if err := badgeRows.Scan(&userID, &b.Name, &b.Description, &b.Icon, &b.EarnedAt); err != nil {
			return nil, err
		}
		if u, ok := byID[userID]; ok {
			u.Badges = append(u.Badges, b)
		}
	}
	return users, badgeRows.Err()
}

func (r *userRepository) GetStats(ctx context.Context, userID string) (domain.Stats, error) {
	var s domain.Stats
	err := r.DB.QueryRowContext(ctx,
		`SELECT events_attended, events_organized, comments_posted FROM users WHERE id = $1`,
		userID,
	).Scan(&s.EventsAttended, &s.EventsOrganized, &s.CommentsPosted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Stats{}, domain.ErrUserNotFound
		}
		return domain.Stats{}, err
	}
	return s, nil
}

func (r *userRepository) UpdateStats(ctx context.Context, userID string, stats domain.Stats) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET events_attended = $1, events_organized = $2, comments_posted = $3, updated_at = NOW() WHERE id = $4`,
		stats.EventsAttended, stats.EventsOrganized, stats.CommentsPosted, userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT name, description, icon, earned_at FROM badges WHERE user_id = $1 ORDER BY earned_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	badges := make([]domain.Badge, 0)
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.Name, &b.Description, &b.Icon, &b.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *userRepository) AwardBadge(ctx context.Context, userID string, badge domain.Badge) (bool, error) {
	query := `
		INSERT INTO badges (user_id, name, description, icon, earned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, userID, badge.Name, badge.Description, badge.Icon, badge.EarnedAt)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

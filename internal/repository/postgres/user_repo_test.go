package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"campusevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var userSelectColumns = []string{
	"id", "name", "email", "password_hash", "salt", "role",
	"avatar", "bio", "phone", "department", "year", "interests",
	"linkedin", "github", "twitter", "instagram",
	"events_attended", "events_organized", "comments_posted",
	"notify_enabled", "notify_event_reminders", "notify_event_updates", "notify_comments", "notify_registrations",
	"created_at", "updated_at",
}

func addUserRow(rows *sqlmock.Rows, id, name, email string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, name, email, "hash", "salt", "student",
		"", "", "", "CS", "2", "{reading,chess}",
		"", "", "", "",
		3, 0, 5,
		true, true, true, true, true,
		now, now,
	)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
		},
		{
			name: "duplicate email",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			u := &domain.User{
				Name:  "Asha",
				Email: "asha@example.com",
				Role:  domain.RoleStudent,
			}
			err = repo.Create(ctx, u)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
				require.Equal(t, "user-uuid-1", u.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("success with badges", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM users WHERE email = \$1`).
			WithArgs("asha@example.com").
			WillReturnRows(addUserRow(sqlmock.NewRows(userSelectColumns), "user-1", "Asha", "asha@example.com"))
		mock.ExpectQuery(`SELECT name, description, icon, earned_at FROM badges`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"name", "description", "icon", "earned_at"}).
				AddRow("First Event", "Attended a first event", "🎉", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

		repo := NewUserRepository(db)
		got, err := repo.GetByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Equal(t, "user-1", got.ID)
		require.Equal(t, []string{"reading", "chess"}, got.Profile.Interests)
		require.Equal(t, 3, got.Stats.EventsAttended)
		require.Len(t, got.Badges, 1)
		require.Equal(t, "First Event", got.Badges[0].Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT(.|\n)+FROM users WHERE email = \$1`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		got, err := repo.GetByEmail(ctx, "missing@example.com")
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		err = repo.UpdateProfile(ctx, "user-1", domain.Profile{Bio: "hello", Interests: []string{"go"}})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE users SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		err = repo.UpdateProfile(ctx, "ghost", domain.Profile{})
		require.True(t, errors.Is(err, domain.ErrUserNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_AwardBadge(t *testing.T) {
	ctx := context.Background()
	badge := domain.Badge{Name: "First Event", Description: "d", Icon: "🎉", EarnedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	t.Run("newly awarded", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO badges`).
			WithArgs("user-1", "First Event", "d", "🎉", badge.EarnedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		awarded, err := repo.AwardBadge(ctx, "user-1", badge)
		require.NoError(t, err)
		require.True(t, awarded)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already held", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		// ON CONFLICT DO NOTHING swallows the duplicate.
		mock.ExpectExec(`INSERT INTO badges`).
			WithArgs("user-1", "First Event", "d", "🎉", badge.EarnedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		awarded, err := repo.AwardBadge(ctx, "user-1", badge)
		require.NoError(t, err)
		require.False(t, awarded)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetStats(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT events_attended, events_organized, comments_posted FROM users`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"events_attended", "events_organized", "comments_posted"}).
			AddRow(4, 1, 9))

	repo := NewUserRepository(db)
	stats, err := repo.GetStats(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, domain.Stats{EventsAttended: 4, EventsOrganized: 1, CommentsPosted: 9}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

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

var eventColumns = []string{
	"id", "title", "description", "date", "location", "category",
	"capacity", "banner", "status", "featured", "created_by", "created_at", "updated_at",
	"owner_id", "owner_name", "owner_email", "owner_role",
	"attendee_count", "view_count",
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success with capacity",
			event: &domain.Event{
				Title:       "Tech Meetup",
				Description: "Monthly meetup",
				Date:        date,
				Location:    "Main Hall",
				Category:    "Tech",
				Capacity:    intPtr(100),
				Status:      domain.StatusDraft,
				CreatedBy:   "org-1",
				CreatedAt:   date,
				UpdatedAt:   date,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Tech Meetup", "Monthly meetup", date, "Main Hall", "Tech",
						sql.NullInt64{Int64: 100, Valid: true}, sql.NullString{}, "draft", false, "org-1", date, date).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			event: &domain.Event{
				Title:     "Tech Meetup",
				Status:    domain.StatusDraft,
				CreatedBy: "org-1",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventColumns).
				AddRow("ev-1", "Tech Meetup", "Monthly meetup", date, "Main Hall", "Tech",
					int64(100), "https://media.test/banner.png", "published", true, "org-1", date, date,
					"org-1", "Org Anizer", "org@example.com", "organizer",
					42, 120))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", got.ID)
		require.Equal(t, domain.StatusPublished, got.Status)
		require.NotNil(t, got.Capacity)
		require.Equal(t, 100, *got.Capacity)
		require.NotNil(t, got.Banner)
		require.Equal(t, "https://media.test/banner.png", *got.Banner)
		require.NotNil(t, got.Owner)
		require.Equal(t, "Org Anizer", got.Owner.Name)
		require.Equal(t, 42, got.AttendeeCount)
		require.Equal(t, 120, got.ViewCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null capacity and banner", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
			WithArgs("ev-2").
			WillReturnRows(sqlmock.NewRows(eventColumns).
				AddRow("ev-2", "Open Mic", "No limit", date, "Quad", "Social",
					nil, nil, "published", false, "org-1", date, date,
					"org-1", "Org Anizer", "org@example.com", "organizer",
					0, 0))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-2")
		require.NoError(t, err)
		require.Nil(t, got.Capacity)
		require.Nil(t, got.Banner)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, "ev-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		mock       func(mock sqlmock.Sqlmock)
		wantErr    bool
		isNotFound bool
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr:    true,
			isNotFound: true,
		},
		{
			name: "db error",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Delete(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				if tt.isNotFound {
					require.True(t, errors.Is(err, domain.ErrNotFound))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_AddAttendee(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success under capacity",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(int64(10)))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_attendees`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
				mock.ExpectExec(`INSERT INTO event_attendees`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unlimited capacity skips the count",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(nil))
				mock.ExpectExec(`INSERT INTO event_attendees`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(int64(2)))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM event_attendees`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "duplicate registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(nil))
				mock.ExpectExec(`INSERT INTO event_attendees`).
					WithArgs("ev-1", "user-1").
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "unknown event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT capacity FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs("ev-1").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.AddAttendee(ctx, "ev-1", "user-1")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_IsAttendee(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ev-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewEventRepository(db)
	ok, err := repo.IsAttendee(ctx, "ev-1", "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListAttendees(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT u.id, u.name, u.email, u.department, u.year`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "department", "year"}).
			AddRow("user-1", "Asha", "asha@example.com", "CS", "2").
			AddRow("user-2", "Ben", "ben@example.com", "", ""))

	repo := NewEventRepository(db)
	attendees, err := repo.ListAttendees(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	require.Equal(t, "Asha", attendees[0].Name)
	require.Equal(t, "CS", attendees[0].Department)
	require.Empty(t, attendees[1].Department)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_List_FilterArgs(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT e.id, e.title, e.description`).
		WithArgs("published", "Tech", "%meetup%").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	repo := NewEventRepository(db)
	events, err := repo.List(ctx, domain.EventFilter{
		Status:       "published",
		Category:     "Tech",
		Search:       "meetup",
		FeaturedOnly: true,
	})
	require.NoError(t, err)
	require.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func intPtr(v int) *int { return &v }

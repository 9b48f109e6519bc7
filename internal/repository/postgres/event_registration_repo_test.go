package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventreg/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var registrationColumns = []string{"id", "user_id", "event_id", "registered_at"}

func TestRegistrationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Registration
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
					WithArgs("ev-1", "user-1").
					WillReturnRows(sqlmock.NewRows(registrationColumns).AddRow("reg-1", "user-1", "ev-1", at))
			},
			want: &domain.Registration{ID: "reg-1", UserID: "user-1", EventID: "ev-1", RegisteredAt: at},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM registrations`).
					WithArgs("ev-1", "user-1").
					WillReturnError(sql.ErrNoRows)
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
			got, err := NewRegistrationRepository(db).GetByEventAndUser(ctx, "ev-1", "user-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "deleted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "nothing to delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM registrations`).
					WithArgs("ev-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM registrations`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewRegistrationRepository(db).Delete(ctx, "ev-1", "user-1")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_ListByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM registrations WHERE user_id = \$1 ORDER BY registered_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(registrationColumns).
			AddRow("reg-2", "user-1", "ev-2", newer).
			AddRow("reg-1", "user-1", "ev-1", older))

	regs, err := NewRegistrationRepository(db).ListByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, "reg-2", regs[0].ID)
	require.Equal(t, "ev-1", regs[1].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_ListByUserID_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM registrations WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(registrationColumns))

	regs, err := NewRegistrationRepository(db).ListByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, regs)
	require.Empty(t, regs)
}

func TestRegistrationRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM registrations`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`ORDER BY registered_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 20).
		WillReturnRows(sqlmock.NewRows(registrationColumns).AddRow("reg-21", "user-9", "ev-3", at))

	regs, total, err := NewRegistrationRepository(db).List(context.Background(), domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 21, total)
	require.Len(t, regs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

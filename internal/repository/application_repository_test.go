package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-events/internal/model"
)

func newApplicationMock(t *testing.T) (*ApplicationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApplicationRepo(db), mock
}

func TestSubmit_FirstApplicationIsPending(t *testing.T) {
	repo, mock := newApplicationMock(t)

	mock.ExpectQuery(`COUNT\(\*\) FROM applications`).WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(11, 1))

	app := model.Application{
		PositionID: 3,
		UserID:     7,
		Name:       "Jordan Vega",
		Email:      "jordan@example.com",
		Answers:    map[string]string{"Why do you want this role?": "I run the AV setup already."},
	}
	err := repo.Submit(context.Background(), &app)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), app.ID)
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_SecondAttemptConflicts(t *testing.T) {
	repo, mock := newApplicationMock(t)

	// A rejected application still occupies the slot: one per user per
	// position, ever.
	mock.ExpectQuery(`COUNT\(\*\) FROM applications`).WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(1))

	app := model.Application{PositionID: 3, UserID: 7, Name: "Jordan Vega", Email: "jordan@example.com"}
	err := repo.Submit(context.Background(), &app)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_UnknownApplication(t *testing.T) {
	repo, mock := newApplicationMock(t)

	mock.ExpectExec("UPDATE applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), 99, model.ApplicationAccepted)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByPositionAndUser_DecodesAnswers(t *testing.T) {
	repo, mock := newApplicationMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "position_id", "user_id", "name", "email", "answers", "status", "created_at", "updated_at"}).
		AddRow(11, 3, 7, "Jordan Vega", "jordan@example.com",
			[]byte(`{"Availability":"weekends"}`), "pending", now, now)
	mock.ExpectQuery(`FROM applications WHERE position_id=\? AND user_id=\?`).
		WithArgs(uint64(3), uint64(7)).WillReturnRows(rows)

	app, err := repo.GetByPositionAndUser(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, "weekends", app.Answers["Availability"])
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

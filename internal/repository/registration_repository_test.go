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

func newMock(t *testing.T) (*RegistrationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRegistrationRepo(db), mock
}

// lockedEventRows builds the row set returned by the FOR UPDATE lock query.
func lockedEventRows(id uint64, status string, date time.Time, capacity any, deadline any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "event_date", "start_time", "capacity", "registration_deadline"}).
		AddRow(id, status, date, nil, capacity, deadline)
}

func TestRegister_ActiveWhenCapacityFree(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery(`status IN \('active', 'waitlisted'\)`).WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(`status = 'active'`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(1))
	mock.ExpectExec("INSERT INTO registrations").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	res, err := repo.Register(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationActive, res.Registration.Status)
	assert.Equal(t, uint64(42), res.Registration.ID)
	assert.NotEmpty(t, res.Registration.PublicID)
	assert.Nil(t, res.Registration.Position)
	assert.Zero(t, res.WaitlistRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_WaitlistedWhenFull(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery(`status IN \('active', 'waitlisted'\)`).WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectQuery(`status = 'active'`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(2))
	mock.ExpectQuery(`COALESCE\(MAX\(position\), 0\)`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"c", "m"}).AddRow(3, 5))
	mock.ExpectExec("INSERT INTO registrations").
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()

	res, err := repo.Register(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationWaitlisted, res.Registration.Status)
	// Position continues from the historical maximum even after earlier
	// waitlist entries were promoted or cancelled.
	require.NotNil(t, res.Registration.Position)
	assert.Equal(t, uint32(6), *res.Registration.Position)
	assert.Equal(t, 4, res.WaitlistRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_UnlimitedCapacitySkipsCounting(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, nil, nil))
	mock.ExpectQuery(`status IN \('active', 'waitlisted'\)`).WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectExec("INSERT INTO registrations").
		WillReturnResult(sqlmock.NewResult(44, 1))
	mock.ExpectCommit()

	res, err := repo.Register(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationActive, res.Registration.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_ClosedAfterDeadline(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)
	pastDeadline := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, pastDeadline))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Duplicate(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery(`status IN \('active', 'waitlisted'\)`).WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_EventNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "event_date", "start_time", "capacity", "registration_deadline"}))
	mock.ExpectRollback()

	_, err := repo.Register(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnregister_PromotesLowestPosition(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery("SELECT id, status FROM registrations").WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(10, "active"))
	mock.ExpectExec(`status = 'cancelled'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`ORDER BY position ASC LIMIT 1`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "user_id"}).
			AddRow(11, "abc-123", 9))
	mock.ExpectExec(`status = 'active'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	promoted, err := repo.Unregister(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, uint64(9), promoted.UserID)
	assert.Equal(t, model.RegistrationActive, promoted.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnregister_EmptyWaitlistNoPromotion(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery("SELECT id, status FROM registrations").WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(10, "active"))
	mock.ExpectExec(`status = 'cancelled'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`ORDER BY position ASC LIMIT 1`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "user_id"}))
	mock.ExpectCommit()

	promoted, err := repo.Unregister(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnregister_WaitlistedCancelFreesNothing(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery("SELECT id, status FROM registrations").WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(10, "waitlisted"))
	mock.ExpectExec(`status = 'cancelled'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	promoted, err := repo.Unregister(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnregister_NotRegistered(t *testing.T) {
	repo, mock := newMock(t)
	future := time.Now().UTC().Add(72 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(uint64(1)).
		WillReturnRows(lockedEventRows(1, "default", future, 2, nil))
	mock.ExpectQuery("SELECT id, status FROM registrations").WithArgs(uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectRollback()

	_, err := repo.Unregister(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistPosition_SingleStatementRank(t *testing.T) {
	repo, mock := newMock(t)

	// Rank lookup and count run as one statement; only one query may hit
	// the database so a concurrent promotion cannot skew the rank.
	mock.ExpectQuery(`position <= \(SELECT position FROM registrations`).
		WithArgs(uint64(1), uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(2))

	rank, err := repo.WaitlistPosition(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, rank)
	assert.Equal(t, 2, *rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistPosition_NotWaitlisted(t *testing.T) {
	repo, mock := newMock(t)

	// The subquery yields NULL for a user without a waitlisted row, which
	// collapses the count to zero.
	mock.ExpectQuery(`position <= \(SELECT position FROM registrations`).
		WithArgs(uint64(1), uint64(1), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))

	rank, err := repo.WaitlistPosition(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM registrations WHERE event_id = \?`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"a", "w"}).AddRow(5, 3))

	active, waitlisted, err := repo.Counts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, active)
	assert.Equal(t, 3, waitlisted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAttendance_CancelledRowRejected(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`SET attendance = \?`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAttendance(context.Background(), 10, model.AttendanceAttended, nil)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-events/internal/repository"
)

func newPositionHandler(t *testing.T) (*PositionHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPositionHandler(repository.NewPositionRepo(db), repository.NewApplicationRepo(db)), mock
}

func positionRows(id uint64, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "description", "tags", "questions", "status", "created_at", "updated_at"}).
		AddRow(id, "Event Crew", "Help run hack nights", []byte(`["events"]`),
			[]byte(`[{"question":"Why this role?","type":"textarea"}]`), status, now, now)
}

func newApplyContext(t *testing.T, positionID, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/positions/"+positionID+"/apply", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/positions/:id/apply")
	c.SetParamNames("id")
	c.SetParamValues(positionID)
	c.Set("user_id", float64(7)) // mimics the JWT middleware
	return c, rec
}

func TestApply_Created(t *testing.T) {
	h, mock := newPositionHandler(t)

	mock.ExpectQuery(`FROM positions WHERE id = \?`).WithArgs(uint64(3)).
		WillReturnRows(positionRows(3, "active"))
	mock.ExpectQuery(`COUNT\(\*\) FROM applications`).WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(0))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(11, 1))

	body := `{"name":"Jordan Vega","email":"Jordan@Example.com","answers":{"Why this role?":"I already help out"}}`
	c, rec := newApplyContext(t, "3", body)
	require.NoError(t, h.Apply(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	// Email is normalised before storage.
	assert.Contains(t, rec.Body.String(), `"email":"jordan@example.com"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_ClosedPositionRejected(t *testing.T) {
	h, mock := newPositionHandler(t)

	mock.ExpectQuery(`FROM positions WHERE id = \?`).WithArgs(uint64(3)).
		WillReturnRows(positionRows(3, "inactive"))

	c, rec := newApplyContext(t, "3", `{"name":"Jordan Vega","email":"jordan@example.com"}`)
	require.NoError(t, h.Apply(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_DuplicateConflicts(t *testing.T) {
	h, mock := newPositionHandler(t)

	mock.ExpectQuery(`FROM positions WHERE id = \?`).WithArgs(uint64(3)).
		WillReturnRows(positionRows(3, "active"))
	mock.ExpectQuery(`COUNT\(\*\) FROM applications`).WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c"}).AddRow(1))

	c, rec := newApplyContext(t, "3", `{"name":"Jordan Vega","email":"jordan@example.com"}`)
	require.NoError(t, h.Apply(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionDetail_DraftHiddenFromPublic(t *testing.T) {
	h, mock := newPositionHandler(t)

	mock.ExpectQuery(`FROM positions WHERE id = \?`).WithArgs(uint64(3)).
		WillReturnRows(positionRows(3, "draft"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/positions/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/positions/:id")
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Detail(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

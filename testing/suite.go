package testing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shaurya/recordkit/config"
	"github.com/shaurya/recordkit/framework"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMockDB opens a GORM postgres handle over sqlmock. Expectations are
// checked when the test ends.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})
	return db, mock
}

// Suite wires an App to a mock database for handler tests.
type Suite struct {
	App     *framework.App
	DB      *gorm.DB
	Mock    sqlmock.Sqlmock
	Factory *Factory
	Assert  *Assertions
	t       *testing.T
}

// NewSuite creates an App in the test environment backed by NewMockDB.
func NewSuite(t *testing.T) *Suite {
	t.Helper()

	cfg := config.Defaults()
	cfg.App.Env = "test"
	cfg.I18n.LocalesDir = ""
	app := framework.New(&cfg)

	db, mock := NewMockDB(t)
	require.NoError(t, app.UseDB(db))

	return &Suite{
		App:     app,
		DB:      db,
		Mock:    mock,
		Factory: NewFactory(db),
		Assert:  &Assertions{t: t},
		t:       t,
	}
}

func (s *Suite) do(method, path string, body framework.H) *httptest.ResponseRecorder {
	s.t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	s.App.Handler().ServeHTTP(rr, req)
	return rr
}

// GET sends a GET request.
func (s *Suite) GET(path string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, path, nil)
}

// POST sends a POST request with a JSON body.
func (s *Suite) POST(path string, body framework.H) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, path, body)
}

// PUT sends a PUT request with a JSON body.
func (s *Suite) PUT(path string, body framework.H) *httptest.ResponseRecorder {
	return s.do(http.MethodPut, path, body)
}

// DELETE sends a DELETE request.
func (s *Suite) DELETE(path string) *httptest.ResponseRecorder {
	return s.do(http.MethodDelete, path, nil)
}

// --- Assertions ---

// Assertions provides response assertion helpers.
type Assertions struct {
	t *testing.T
}

// Status asserts the response code.
func (a *Assertions) Status(res *httptest.ResponseRecorder, code int) {
	a.t.Helper()
	assert.Equal(a.t, code, res.Code, res.Body.String())
}

// JSONContains asserts the response body contains a string.
func (a *Assertions) JSONContains(res *httptest.ResponseRecorder, substr string) {
	a.t.Helper()
	assert.Contains(a.t, res.Body.String(), substr)
}

// JSON decodes the response body into a map.
func (a *Assertions) JSON(res *httptest.ResponseRecorder) map[string]any {
	a.t.Helper()
	var out map[string]any
	require.NoError(a.t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

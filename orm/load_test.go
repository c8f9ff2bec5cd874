package orm_test

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shaurya/recordkit/framework/httperr"
	"github.com/shaurya/recordkit/framework/i18n"
	"github.com/shaurya/recordkit/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectWidgetByID = `SELECT * FROM "widgets" WHERE "widgets"."id" = $1`

func TestLoadByPrimaryKey(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color"}).AddRow(5, "gear", "red"))

	w, err := orm.Load[Widget](db, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), w.ID)
	assert.Equal(t, "gear", w.Name)
	assert.Equal(t, "red", w.Color)
}

func TestLoadNotFound(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w, err := orm.Load[Widget](db, 404)
	assert.Nil(t, w)
	require.Error(t, err)

	var httpErr *httperr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, orm.DefaultNotFoundMessage, httpErr.Message)
}

func TestLoadNotFoundTranslated(t *testing.T) {
	tr := i18n.New("en")
	tr.Add("ru", map[string]any{"core": map[string]any{
		orm.DefaultNotFoundMessage: "Запрошенный элемент отсутствует в базе.",
	}})
	tr.SetLocale("ru")

	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := orm.Load[Widget](db, 1, orm.WithTranslator(tr))
	assert.True(t, httperr.IsNotFound(err))
	assert.EqualError(t, err, "Запрошенный элемент отсутствует в базе.")
}

func TestLoadNotFoundCustomMessage(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := orm.Load[Widget](db, 1, orm.NotFoundMessage("widgets", "No such widget."))
	assert.EqualError(t, err, "No such widget.")
}

func TestLoadByAttributeMap(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "widgets" WHERE "widgets"."name" = $1 LIMIT $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "gear"))

	w, err := orm.Load[Widget](db, map[string]string{"Name": "gear"})
	require.NoError(t, err)
	assert.Equal(t, uint(2), w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadWithRelations(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "author_id"}).AddRow(5, "gear", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "authors" WHERE "authors"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Ann"))

	w, err := orm.Load[Widget](db, 5, orm.With("Author"))
	require.NoError(t, err)
	require.NotNil(t, w.Author)
	assert.Equal(t, "Ann", w.Author.Name)
	assert.Equal(t, "Ann", orm.Value(w, "Author.Name", ""))
}

func TestLoadPassesDatabaseErrorsThrough(t *testing.T) {
	db, mock := newDB(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta(selectWidgetByID)).WillReturnError(boom)

	_, err := orm.Load[Widget](db, 5)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, http.StatusInternalServerError, httperr.StatusCode(err))
}

func TestQueryBuilderLoadKeepsCriteria(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectQuery(`FROM "widgets" WHERE ("widgets"\."id" = \$1 AND color = \$2|color = \$1 AND "widgets"\."id" = \$2)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "color"}).AddRow(5, "red"))

	w, err := orm.Query[Widget](db).Where("color = ?", "red").Load(5)
	require.NoError(t, err)
	assert.Equal(t, "red", w.Color)
}

package orm_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shaurya/recordkit/orm"
	rktest "github.com/shaurya/recordkit/testing"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type Author struct {
	orm.Record
	Name    string `validate:"required"`
	Email   string `gorm:"uniqueIndex" validate:"required,email"`
	Widgets []Widget
}

type Widget struct {
	orm.Record
	Name     string `validate:"required"`
	Color    string `record:"safe"`
	OwnerID  uint
	AuthorID uint
	Author   *Author
	Datetime bool
	Meta     map[string]any `gorm:"-"`
	Tags     []string       `gorm:"-"`
}

// Gadget lists its safe attributes explicitly.
type Gadget struct {
	orm.Record
	Label  string
	Secret string `validate:"required"`
}

func (Gadget) SafeAttributes() []string { return []string{"label"} }

func newDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := rktest.NewMockDB(t)
	require.NoError(t, orm.RegisterPreSetCallbacks(db))
	return db, mock
}

func toSQL(db *gorm.DB, query func(tx *gorm.DB) *gorm.DB) string {
	return db.ToSQL(query)
}

package orm_test

import (
	"testing"

	"github.com/shaurya/recordkit/orm"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCriteriaMergeWithOrder(t *testing.T) {
	base := orm.Criteria{}.Order("name")

	merged := base.MergeWith(orm.Criteria{}.Order("created DESC"))
	assert.Equal(t, "created DESC, name", merged.OrderBy())
	assert.Equal(t, "name", base.OrderBy())

	assert.Equal(t, "name", base.MergeWith(orm.Criteria{}.Order("name")).OrderBy())
	assert.Equal(t, "name", base.MergeWith(orm.Criteria{}).OrderBy())
}

func TestCriteriaMergeWithLimitAndOffset(t *testing.T) {
	base := orm.Criteria{}.Limit(5).Offset(10)

	limit, _ := base.MergeWith(orm.Criteria{}.Limit(0)).LimitValue()
	assert.Equal(t, 5, limit, "a non-positive limit does not override")

	limit, _ = base.MergeWith(orm.Criteria{}.Limit(1)).LimitValue()
	assert.Equal(t, 1, limit)

	offset, _ := base.MergeWith(orm.Criteria{}.Offset(0)).OffsetValue()
	assert.Equal(t, 0, offset)

	offset, _ = base.MergeWith(orm.Criteria{}.Offset(-1)).OffsetValue()
	assert.Equal(t, 10, offset)

	_, set := orm.Criteria{}.MergeWith(orm.Criteria{}).LimitValue()
	assert.False(t, set)
}

func TestCriteriaMergeWithConditionsAndRelations(t *testing.T) {
	a := orm.Criteria{}.Where("color = ?", "red").With("Author")
	b := orm.Criteria{}.Where("name = ?", "gear").With("Author", "Owner")

	merged := a.MergeWith(b)
	conds := merged.Conditions()
	if assert.Len(t, conds, 2) {
		assert.Equal(t, "color = ?", conds[0].Query)
		assert.Equal(t, "name = ?", conds[1].Query)
		assert.Equal(t, []any{"gear"}, conds[1].Args)
	}
	assert.Equal(t, []string{"Author", "Owner"}, merged.Relations())
}

func TestCriteriaIsImmutable(t *testing.T) {
	base := orm.Criteria{}.Where("a = ?", 1)
	x := base.Where("b = ?", 2)
	y := base.Where("c = ?", 3)

	assert.Len(t, base.Conditions(), 1)
	assert.Equal(t, "b = ?", x.Conditions()[1].Query)
	assert.Equal(t, "c = ?", y.Conditions()[1].Query)

	_ = base.LastCreated("widgets")
	assert.Equal(t, "", base.OrderBy())
	_, set := base.LimitValue()
	assert.False(t, set)
}

func TestCriteriaLastCreated(t *testing.T) {
	c := orm.Criteria{}.Where("name = ?", "gear").LastCreated("widgets")

	assert.Equal(t, "widgets.created DESC", c.OrderBy())
	limit, set := c.LimitValue()
	assert.True(t, set)
	assert.Equal(t, 1, limit)
	assert.Len(t, c.Conditions(), 1)

	assert.Equal(t, "created DESC, name", orm.Criteria{}.Order("name").LastCreated("").OrderBy())
	assert.Equal(t, "w.created DESC", orm.Criteria{}.LastCreated("w.").OrderBy())
}

func TestCriteriaLastCreatedSQL(t *testing.T) {
	db, _ := newDB(t)
	c := orm.Criteria{}.Where("name = ?", "gear").LastCreated("widgets")

	sql := toSQL(db, func(tx *gorm.DB) *gorm.DB {
		var w Widget
		return tx.Scopes(c.Scope()).Find(&w)
	})

	assert.Contains(t, sql, `FROM "widgets"`)
	assert.Contains(t, sql, "WHERE name = 'gear'")
	assert.Contains(t, sql, "ORDER BY widgets.created DESC")
	assert.Contains(t, sql, "LIMIT 1")
}

func TestLastCreatedScopeUsesModelTable(t *testing.T) {
	db, _ := newDB(t)

	sql := toSQL(db, func(tx *gorm.DB) *gorm.DB {
		var w Widget
		return tx.Where("color = ?", "red").Scopes(orm.LastCreated("")).Find(&w)
	})
	assert.Contains(t, sql, "WHERE color = 'red'")
	assert.Contains(t, sql, "ORDER BY widgets.created DESC")

	sql = toSQL(db, func(tx *gorm.DB) *gorm.DB {
		var w []Widget
		return tx.Scopes(orm.LastCreated("w")).Find(&w)
	})
	assert.Contains(t, sql, "ORDER BY w.created DESC")
}

func TestQueryBuilderIsImmutable(t *testing.T) {
	db, _ := newDB(t)

	base := orm.Query[Widget](db)
	red := base.Where("color = ?", "red")
	latest := red.LastCreated()

	assert.Empty(t, base.Criteria().Conditions())
	assert.Len(t, red.Criteria().Conditions(), 1)
	assert.Equal(t, "", red.Criteria().OrderBy())
	assert.Equal(t, "widgets.created DESC", latest.Criteria().OrderBy())
	assert.Equal(t, "x.created DESC", red.LastCreated("x").Criteria().OrderBy())
}

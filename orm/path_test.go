package orm_test

import (
	"testing"

	"github.com/shaurya/recordkit/orm"
	"github.com/stretchr/testify/assert"
)

func TestValueMissingLinksReturnDefault(t *testing.T) {
	w := &Widget{Name: "gear"}

	assert.Equal(t, "def", orm.Value(w, "Missing.Name", "def"))
	assert.Equal(t, "def", orm.Value(w, "Author.Name", "def"), "nil relation")

	w.Author = &Author{Name: "Ann"}
	assert.Equal(t, "def", orm.Value(w, "Author.Missing", "def"))
	assert.Equal(t, "Ann", orm.Value(w, "Author.Name", "def"))
}

func TestResolveMatchesFieldNames(t *testing.T) {
	w := &Widget{OwnerID: 9, Author: &Author{Name: "Ann"}}
	w.ID = 3

	v, ok := orm.Resolve(w, "owner_id")
	assert.True(t, ok)
	assert.Equal(t, uint(9), v)

	v, ok = orm.Resolve(w, "author.name")
	assert.True(t, ok)
	assert.Equal(t, "Ann", v)

	v, ok = orm.Resolve(*w, ".ID.")
	assert.True(t, ok)
	assert.Equal(t, uint(3), v)

	_, ok = orm.Resolve(w, "preSet")
	assert.False(t, ok, "unexported fields are not reachable")
}

func TestResolveMapsAndSlices(t *testing.T) {
	w := &Widget{
		Meta: map[string]any{"dims": map[string]int{"h": 4}, "nil": nil},
		Tags: []string{"a", "b"},
	}

	assert.Equal(t, 4, orm.Value(w, "Meta.dims.h", 0))
	assert.Equal(t, "b", orm.Value(w, "Tags.1", ""))
	assert.Equal(t, "none", orm.Value(w, "Tags.5", "none"))
	assert.Equal(t, "none", orm.Value(w, "Tags.x", "none"))
	assert.Equal(t, "none", orm.Value(w, "Meta.nil", "none"), "nil terminal value")
	assert.Equal(t, "none", orm.Value(w, "Meta.missing", "none"))
}

func TestResolveEdgeCases(t *testing.T) {
	_, ok := orm.Resolve(&Widget{}, "")
	assert.False(t, ok)

	_, ok = orm.Resolve(nil, "Name")
	assert.False(t, ok)

	_, ok = orm.Resolve((*Widget)(nil), "Name")
	assert.False(t, ok)

	v, ok := orm.Resolve(&Widget{}, "Name")
	assert.True(t, ok, "zero values are values")
	assert.Equal(t, "", v)
}

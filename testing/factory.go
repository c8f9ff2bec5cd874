package testing

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/shaurya/recordkit/orm"
	"gorm.io/gorm"
)

// Factory builds models from registered attribute defaults.
type Factory struct {
	db       *gorm.DB
	defaults map[reflect.Type]map[string]any
}

// NewFactory creates a Factory persisting through db (which may be nil).
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db:       db,
		defaults: make(map[reflect.Type]map[string]any),
	}
}

// Define registers default attributes, keyed by column or field name, for
// the model's type.
func (f *Factory) Define(model any, defaults map[string]any) {
	f.defaults[reflect.TypeOf(model)] = maps.Clone(defaults)
}

// Build assigns the defaults, then fields, onto model without persisting.
// Every attribute is assignable; the safe-attribute allowlist is not applied.
func (f *Factory) Build(model any, fields map[string]any) error {
	attrs := maps.Clone(f.defaults[reflect.TypeOf(model)])
	if attrs == nil {
		attrs = make(map[string]any, len(fields))
	}
	maps.Copy(attrs, fields)
	return orm.SetAttributes(model, attrs, false)
}

// Create builds model and inserts it.
func (f *Factory) Create(model any, fields map[string]any) error {
	if err := f.Build(model, fields); err != nil {
		return err
	}
	if f.db == nil {
		return fmt.Errorf("testing: factory has no database")
	}
	return f.db.Create(model).Error
}

package orm

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/shaurya/recordkit/framework/httperr"
	"github.com/shaurya/recordkit/framework/i18n"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Defaults for the not-found error raised by Load.
const (
	DefaultNotFoundCategory = "core"
	DefaultNotFoundMessage  = "The requested item does not exist in the database."
)

// Translator is the translation service used for messages produced by this
// package. *i18n.Translator implements it.
type Translator interface {
	T(key string, vars i18n.Vars) string
	Translate(category, message string) string
}

type loadOptions struct {
	with       []string
	category   string
	message    string
	translator Translator
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// With eager-loads the named relations (GORM Preload syntax, e.g. "Author.Profile").
func With(relations ...string) LoadOption {
	return func(o *loadOptions) {
		o.with = appendUnique(o.with, relations...)
	}
}

// NotFoundMessage overrides the translation category and message of the
// not-found error.
func NotFoundMessage(category, message string) LoadOption {
	return func(o *loadOptions) {
		o.category = category
		o.message = message
	}
}

// WithTranslator translates the not-found message with t.
func WithTranslator(t Translator) LoadOption {
	return func(o *loadOptions) {
		o.translator = t
	}
}

// Load fetches a single T. A string-keyed map id matches on attribute
// equality; any other id is a primary key value. When no row matches, the
// error is an *httperr.HTTPError with status 404 and the translated
// message. Other database errors are returned as they are.
func Load[T any](db *gorm.DB, id any, opts ...LoadOption) (*T, error) {
	o := loadOptions{category: DefaultNotFoundCategory, message: DefaultNotFoundMessage}
	for _, opt := range opts {
		opt(&o)
	}

	var result T
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&result); err != nil {
		return nil, err
	}

	tx := db.Model(&result)
	for _, rel := range o.with {
		tx = tx.Preload(rel)
	}

	if attrs, ok := attributeMap(id); ok {
		where := make(map[string]any, len(attrs))
		for name, value := range attrs {
			if f := attributeField(stmt.Schema, name); f != nil {
				name = f.DBName
			}
			where[name] = value
		}
		tx = tx.Where(where)
	} else {
		pk := stmt.Schema.PrioritizedPrimaryField
		if pk == nil {
			return nil, fmt.Errorf("orm: %s has no primary key", stmt.Schema.Name)
		}
		tx = tx.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName},
			Value:  id,
		})
	}

	if err := tx.Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Debug("orm: record not found",
				zap.String("model", stmt.Schema.Name), zap.Any("id", id))
			return nil, httperr.NotFound(o.translate())
		}
		return nil, err
	}
	return &result, nil
}

func (o loadOptions) translate() string {
	if o.translator == nil {
		return o.message
	}
	return o.translator.Translate(o.category, o.message)
}

func attributeMap(id any) (map[string]any, bool) {
	if m, ok := id.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(id)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

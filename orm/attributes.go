package orm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm/schema"
)

var (
	// ErrUnknownAttribute is returned when a pre-set key names no column.
	ErrUnknownAttribute = errors.New("orm: unknown attribute")
	// ErrNotStruct is returned when a model is not a (pointer to a) struct.
	ErrNotStruct = errors.New("orm: model must be a struct")
)

// SafeAttributer lets a model list its mass-assignable attributes
// explicitly. Without it, a field is safe when it is tagged record:"safe"
// or carries a validate tag.
type SafeAttributer interface {
	SafeAttributes() []string
}

var schemaCache = &sync.Map{}

func parseSchema(model any) (*schema.Schema, error) {
	s, err := schema.Parse(model, schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, err)
	}
	return s, nil
}

// attributeField finds a column by DB name or Go field name.
func attributeField(s *schema.Schema, name string) *schema.Field {
	f := s.LookUpField(name)
	if f == nil || f.DBName == "" {
		return nil
	}
	return f
}

// AttributeNames lists the model's column names in declaration order.
func AttributeNames(model any) ([]string, error) {
	s, err := parseSchema(model)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.DBNames), nil
}

// Attributes returns column values keyed by DB name. With names, only those
// attributes are returned; names that match no column are skipped.
func Attributes(model any, names ...string) (map[string]any, error) {
	s, err := parseSchema(model)
	if err != nil {
		return nil, err
	}
	rv := reflect.Indirect(reflect.ValueOf(model))
	if rv.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	fields := make([]*schema.Field, 0, len(s.DBNames))
	if len(names) == 0 {
		for _, name := range s.DBNames {
			fields = append(fields, s.FieldsByDBName[name])
		}
	} else {
		for _, name := range names {
			if f := attributeField(s, name); f != nil {
				fields = append(fields, f)
			}
		}
	}

	ctx := context.Background()
	attrs := make(map[string]any, len(fields))
	for _, f := range fields {
		value, _ := f.ValueOf(ctx, rv)
		attrs[f.DBName] = value
	}
	return attrs, nil
}

// ApplyOverrides lays overrides on top of resolved and returns the result.
// Neither input is modified; on a shared key the override wins.
func ApplyOverrides(resolved, overrides map[string]any) map[string]any {
	final := make(map[string]any, len(resolved)+len(overrides))
	maps.Copy(final, resolved)
	maps.Copy(final, overrides)
	return final
}

// SetAttributes mass-assigns values onto model, which must be a pointer to
// a struct. Unknown keys are dropped; with safeOnly, so are unsafe ones.
// Pre-set attributes are then applied over the result without any safety
// check, so after the call every pre-set key holds its pre-set value.
func SetAttributes(model any, values map[string]any, safeOnly bool) error {
	s, rv, err := settable(model)
	if err != nil {
		return err
	}

	var safe func(*schema.Field) bool
	if safeOnly {
		safe = safeFilter(model)
	}

	resolved := make(map[string]any, len(values))
	for name, value := range values {
		f := attributeField(s, name)
		if f == nil {
			zap.L().Debug("orm: ignoring unknown attribute",
				zap.String("model", s.Name), zap.String("attribute", name))
			continue
		}
		if safe != nil && !safe(f) {
			zap.L().Debug("orm: ignoring unsafe attribute",
				zap.String("model", s.Name), zap.String("attribute", name))
			continue
		}
		resolved[f.DBName] = value
	}

	var overrides map[string]any
	if p, ok := model.(PreSetter); ok {
		preSet := p.PreSetAttributes()
		overrides = make(map[string]any, len(preSet))
		for name, value := range preSet {
			f := attributeField(s, name)
			if f == nil {
				return fmt.Errorf("%w: %q on %s", ErrUnknownAttribute, name, s.Name)
			}
			overrides[f.DBName] = value
		}
	}

	return assign(s, rv, ApplyOverrides(resolved, overrides))
}

func settable(model any) (*schema.Schema, reflect.Value, error) {
	rv := reflect.ValueOf(model)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, reflect.Value{}, fmt.Errorf("%w: got %T", ErrNotStruct, model)
	}
	s, err := parseSchema(model)
	if err != nil {
		return nil, reflect.Value{}, err
	}
	return s, rv.Elem(), nil
}

func assign(s *schema.Schema, rv reflect.Value, attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		if err := s.FieldsByDBName[name].Set(ctx, rv, attrs[name]); err != nil {
			return fmt.Errorf("orm: set %s.%s: %w", s.Name, name, err)
		}
	}
	return nil
}

func safeFilter(model any) func(*schema.Field) bool {
	if sa, ok := model.(SafeAttributer); ok {
		allowed := make(map[string]bool)
		for _, name := range sa.SafeAttributes() {
			allowed[name] = true
		}
		return func(f *schema.Field) bool {
			return allowed[f.DBName] || allowed[f.Name]
		}
	}
	return func(f *schema.Field) bool {
		switch f.Tag.Get("record") {
		case "safe":
			return true
		case "unsafe":
			return false
		}
		rule := f.Tag.Get("validate")
		return rule != "" && rule != "-"
	}
}

// EqualsAttributes compares the given attributes of a and b, or all of them
// when names is empty, and reports whether at least one attribute holds the
// same value in both. Values are compared by their string form.
func EqualsAttributes(a, b any, names ...string) bool {
	left, err := Attributes(a, names...)
	if err != nil {
		return false
	}
	right, err := Attributes(b, names...)
	if err != nil {
		return false
	}
	for name, lv := range left {
		if rv, ok := right[name]; ok && attributeString(lv) == attributeString(rv) {
			return true
		}
	}
	return false
}

// attributeString renders v for comparison. Times are compared as UTC
// instants, without zone names or monotonic readings.
func attributeString(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

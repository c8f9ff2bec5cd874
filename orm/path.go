package orm

import (
	"reflect"
	"strconv"
	"strings"
)

// Resolve walks a dotted path such as "Author.Profile.ID" from model and
// returns the value at its end. Segments match struct fields by Go name,
// column name or case-insensitively, string-keyed map entries, and slice
// indexes. ok is false when any link is missing or nil.
func Resolve(model any, path string) (value any, ok bool) {
	path = strings.Trim(path, ".")
	if path == "" {
		return nil, false
	}

	cur := reflect.ValueOf(model)
	for _, seg := range strings.Split(path, ".") {
		if cur, ok = step(cur, seg); !ok {
			return nil, false
		}
	}
	if isNil(cur) || !cur.CanInterface() {
		return nil, false
	}
	return cur.Interface(), true
}

// Value is Resolve with a fallback: it returns def when the path does not
// lead to a value.
func Value(model any, path string, def any) any {
	if v, ok := Resolve(model, path); ok {
		return v
	}
	return def
}

func step(v reflect.Value, seg string) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Struct:
		return structField(v, seg)
	case reflect.Map:
		kt := v.Type().Key()
		if kt.Kind() != reflect.String {
			return reflect.Value{}, false
		}
		e := v.MapIndex(reflect.ValueOf(seg).Convert(kt))
		return e, e.IsValid()
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true
	}
	return reflect.Value{}, false
}

func structField(v reflect.Value, seg string) (reflect.Value, bool) {
	t := v.Type()
	sf, ok := t.FieldByName(seg)
	if !ok {
		if s, err := parseSchema(reflect.New(t).Interface()); err == nil {
			if f := s.LookUpField(seg); f != nil {
				sf, ok = t.FieldByName(f.Name)
			}
		}
	}
	if !ok {
		sf, ok = t.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, seg)
		})
	}
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}

	fv, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return fv, true
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

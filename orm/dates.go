package orm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shaurya/recordkit/config"
	"github.com/spf13/cast"
)

// Default date patterns, in ICU notation.
const (
	DefaultDateFormatSave    = "yyyy-MM-dd HH:mm:ss"
	DefaultDateFormatDisplay = "dd.MM.yyyy HH:mm:ss"
)

// DatetimeAttribute is the column that enables ConvertDateFromTimestamp.
const DatetimeAttribute = "datetime"

// DateConverter reformats dates between the storage and display patterns.
// Patterns use ICU notation (yyyy, MM, dd, HH, mm, ss, ...).
type DateConverter struct {
	SaveFormat    string
	DisplayFormat string
	Location      *time.Location
}

// NewDateConverter returns a converter with the default patterns in UTC.
func NewDateConverter() DateConverter {
	return DateConverter{
		SaveFormat:    DefaultDateFormatSave,
		DisplayFormat: DefaultDateFormatDisplay,
		Location:      time.UTC,
	}
}

// NewDateConverterFromConfig builds a converter from the record section of
// the configuration. Empty values keep the defaults.
func NewDateConverterFromConfig(cfg config.RecordConfig) (DateConverter, error) {
	c := NewDateConverter()
	if cfg.DateFormatSave != "" {
		c.SaveFormat = cfg.DateFormatSave
	}
	if cfg.DateFormatDisplay != "" {
		c.DisplayFormat = cfg.DateFormatDisplay
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return c, fmt.Errorf("orm: load timezone %q: %w", cfg.Timezone, err)
		}
		c.Location = loc
	}
	return c, nil
}

// ToDisplay parses date with the save pattern and formats it with the
// display pattern.
func (c DateConverter) ToDisplay(date string) (string, error) {
	return c.reformat(date, c.SaveFormat, c.DisplayFormat)
}

// ToSave parses date with the display pattern and formats it with the save
// pattern.
func (c DateConverter) ToSave(date string) (string, error) {
	return c.reformat(date, c.DisplayFormat, c.SaveFormat)
}

// ToTimestamp parses a display-pattern date into Unix seconds.
func (c DateConverter) ToTimestamp(date string) (int64, error) {
	t, err := compilePattern(c.DisplayFormat).parse(date, c.location())
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// FromTimestamp formats Unix seconds with the display pattern.
func (c DateConverter) FromTimestamp(ts int64) string {
	return compilePattern(c.DisplayFormat).format(time.Unix(ts, 0).In(c.location()))
}

func (c DateConverter) reformat(date, from, to string) (string, error) {
	t, err := compilePattern(from).parse(date, c.location())
	if err != nil {
		return "", err
	}
	return compilePattern(to).format(t), nil
}

func (c DateConverter) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// ConvertDateFromTimestamp formats timestamp with the model's display
// pattern when the model's datetime attribute is set to a non-zero value.
// Otherwise def is returned. timestamp may be any integer or numeric string.
func ConvertDateFromTimestamp(model any, timestamp any, def string) (string, error) {
	attrs, err := Attributes(model, DatetimeAttribute)
	if err != nil || !truthy(attrs[DatetimeAttribute]) {
		return def, nil
	}
	ts, err := cast.ToInt64E(timestamp)
	if err != nil {
		return "", fmt.Errorf("orm: timestamp %v: %w", timestamp, err)
	}
	return datesOf(model).FromTimestamp(ts), nil
}

func datesOf(model any) DateConverter {
	if d, ok := model.(interface{ Dates() DateConverter }); ok {
		return d.Dates()
	}
	return NewDateConverter()
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != "" && s != "0"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return !rv.IsZero()
}

// icuTokens maps ICU date pattern letters to Go layout elements. A run of
// letters uses the first entry whose length it reaches.
var icuTokens = map[byte][]struct {
	run    int
	layout string
}{
	'y': {{3, "2006"}, {2, "06"}, {1, "2006"}},
	'M': {{4, "January"}, {3, "Jan"}, {2, "01"}, {1, "1"}},
	'd': {{2, "02"}, {1, "2"}},
	'H': {{2, "15"}, {1, "15"}},
	'h': {{2, "03"}, {1, "3"}},
	'm': {{2, "04"}, {1, "4"}},
	's': {{2, "05"}, {1, "5"}},
	'a': {{1, "PM"}},
	'E': {{4, "Monday"}, {1, "Mon"}},
	'z': {{4, "MST"}, {1, "MST"}},
	'Z': {{1, "-0700"}},
	'X': {{1, "Z07:00"}},
}

// ErrLayoutLiteral is returned by Layout when literal text in a pattern
// would be read as a Go layout element.
var ErrLayoutLiteral = errors.New("orm: date pattern literal clashes with Go layout")

// literalMark stands in for literal text in compiled layouts. Go layouts
// have no escaping, and no layout element contains a NUL byte.
const literalMark = "\x00"

// Layout converts an ICU date pattern into a Go time layout. Text in single
// quotes, digits, underscores and letters that are not pattern letters are
// literals; '' is a quote. Fractional seconds (S) become zeros and must
// follow a '.' or ',' in the pattern. When a literal contains a Go layout
// element ("Jan", "PM", a digit...) the layout cannot express it and Layout
// returns ErrLayoutLiteral. DateConverter handles such patterns.
func Layout(pattern string) (string, error) {
	p := compilePattern(pattern)
	layout := p.layout
	for _, lit := range p.literals {
		if layoutProbe.Format(lit) != lit {
			return "", fmt.Errorf("%w: %q in %q", ErrLayoutLiteral, lit, pattern)
		}
		layout = strings.Replace(layout, literalMark, lit, 1)
	}
	return layout, nil
}

// layoutProbe differs from Go's reference time in every layout element, so
// formatting text with it changes the text iff the text holds an element.
var layoutProbe = time.Date(1999, time.November, 28, 9, 58, 57, 123456789, time.FixedZone("XYZ", 5400))

// datePattern is an ICU pattern compiled to a Go layout in which every
// literal is replaced by literalMark.
type datePattern struct {
	layout   string
	literals []string
}

func compilePattern(pattern string) datePattern {
	var (
		p   datePattern
		b   strings.Builder
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			p.literals = append(p.literals, lit.String())
			b.WriteString(literalMark)
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		ch := pattern[i]

		if ch == '\'' {
			if i+1 < len(pattern) && pattern[i+1] == '\'' {
				flush()
				b.WriteByte('\'')
				i += 2
				continue
			}
			i++
			for i < len(pattern) {
				if pattern[i] == '\'' {
					if i+1 < len(pattern) && pattern[i+1] == '\'' {
						lit.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				lit.WriteByte(pattern[i])
				i++
			}
			continue
		}

		if isLiteralByte(ch) {
			lit.WriteByte(ch)
			i++
			continue
		}
		flush()

		n := 1
		for i+n < len(pattern) && pattern[i+n] == ch {
			n++
		}

		if ch == 'S' {
			b.WriteString(strings.Repeat("0", n))
			i += n
			continue
		}

		tokens, ok := icuTokens[ch]
		if !ok {
			b.WriteString(pattern[i : i+n])
			i += n
			continue
		}
		i += n
		for _, tok := range tokens {
			if n >= tok.run {
				b.WriteString(tok.layout)
				break
			}
		}
	}
	flush()

	p.layout = b.String()
	return p
}

func isLiteralByte(ch byte) bool {
	switch {
	case ch >= '0' && ch <= '9', ch == '_':
		return true
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		_, token := icuTokens[ch]
		return !token && ch != 'S'
	}
	return false
}

func (p datePattern) format(t time.Time) string {
	out := t.Format(p.layout)
	for _, lit := range p.literals {
		out = strings.Replace(out, literalMark, lit, 1)
	}
	return out
}

// parse matches each literal in value, in order, and parses the rest with
// the layout. Literals that also occur inside element text (an "at" in
// "Saturday") are retried at their later occurrences.
func (p datePattern) parse(value string, loc *time.Location) (time.Time, error) {
	if len(p.literals) == 0 {
		return time.ParseInLocation(p.layout, value, loc)
	}

	var firstErr error
	var try func(done, rest string, i int) (time.Time, bool)
	try = func(done, rest string, i int) (time.Time, bool) {
		if i == len(p.literals) {
			t, err := time.ParseInLocation(p.layout, done+rest, loc)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return time.Time{}, false
			}
			return t, true
		}
		lit := p.literals[i]
		for off := 0; off <= len(rest); {
			idx := strings.Index(rest[off:], lit)
			if idx < 0 {
				break
			}
			at := off + idx
			if t, ok := try(done+rest[:at]+literalMark, rest[at+len(lit):], i+1); ok {
				return t, true
			}
			off = at + 1
		}
		if firstErr == nil {
			firstErr = &time.ParseError{Layout: p.layout, Value: value, LayoutElem: lit, ValueElem: rest}
		}
		return time.Time{}, false
	}

	if t, ok := try("", value, 0); ok {
		return t, nil
	}
	var pe *time.ParseError
	if errors.As(firstErr, &pe) {
		pe.Value = value
	}
	return time.Time{}, firstErr
}

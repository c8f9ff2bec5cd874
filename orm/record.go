package orm

import (
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultErrorDelimiter separates messages in StringWithAllErrors output.
const DefaultErrorDelimiter = "<br/>"

// Record is the base type for recordkit models. Embed it in your models:
//
//	type Post struct {
//		orm.Record
//		Title string `validate:"required"`
//	}
//
// Besides the usual columns it carries per-instance state that is never
// persisted: pre-set attributes, validation errors and the date converter.
type Record struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"column:created"`
	UpdatedAt time.Time `gorm:"column:updated"`

	preSet     map[string]any
	errors     map[string][]string
	errorOrder []string
	dates      *DateConverter
}

// PreSetter is implemented by models carrying pre-set attributes.
// Every model embedding Record satisfies it through a pointer.
type PreSetter interface {
	PreSetAttributes() map[string]any
}

// IDString returns the record's ID as a string.
func (r *Record) IDString() string {
	return strconv.FormatUint(uint64(r.ID), 10)
}

// SetPreSetAttributes replaces the pre-set attributes of this instance.
// Pre-set values win over anything assigned through SetAttributes.
func (r *Record) SetPreSetAttributes(attrs map[string]any) *Record {
	r.preSet = maps.Clone(attrs)
	return r
}

// PreSetAttributes returns a copy of the pre-set attributes.
func (r *Record) PreSetAttributes() map[string]any {
	return maps.Clone(r.preSet)
}

// IsPreSetAttribute reports whether name is a pre-set key. A key mapped to
// nil still counts.
func (r *Record) IsPreSetAttribute(name string) bool {
	_, ok := r.preSet[name]
	return ok
}

// --- Errors ---

// AddError appends a message for attribute.
func (r *Record) AddError(attribute, message string) {
	if r.errors == nil {
		r.errors = make(map[string][]string)
	}
	if _, ok := r.errors[attribute]; !ok {
		r.errorOrder = append(r.errorOrder, attribute)
	}
	r.errors[attribute] = append(r.errors[attribute], message)
}

// AddErrors merges errs into the record. Attributes are added in name order.
func (r *Record) AddErrors(errs map[string][]string) {
	attrs := make([]string, 0, len(errs))
	for attr := range errs {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		for _, msg := range errs[attr] {
			r.AddError(attr, msg)
		}
	}
}

// Errors returns a copy of all errors keyed by attribute.
func (r *Record) Errors() map[string][]string {
	out := make(map[string][]string, len(r.errors))
	for attr, msgs := range r.errors {
		out[attr] = append([]string(nil), msgs...)
	}
	return out
}

// ErrorsFor returns the messages recorded for one attribute.
func (r *Record) ErrorsFor(attribute string) []string {
	return append([]string(nil), r.errors[attribute]...)
}

// HasErrors reports whether any error has been recorded.
func (r *Record) HasErrors() bool {
	return len(r.errors) > 0
}

// ClearErrors drops every recorded error.
func (r *Record) ClearErrors() {
	r.errors = nil
	r.errorOrder = nil
}

// StringWithAllErrors flattens all messages into one string, attributes in
// the order their first error was added.
func (r *Record) StringWithAllErrors(delimiter string) string {
	parts := make([]string, 0, len(r.errorOrder))
	for _, attr := range r.errorOrder {
		parts = append(parts, strings.Join(r.errors[attr], delimiter))
	}
	return strings.Join(parts, delimiter)
}

// --- Dates ---

// UseDates sets the converter used by the date helpers of this instance.
func (r *Record) UseDates(c DateConverter) *Record {
	r.dates = &c
	return r
}

// Dates returns the instance converter, or the default formats when none
// has been set.
func (r *Record) Dates() DateConverter {
	if r.dates == nil {
		return NewDateConverter()
	}
	return *r.dates
}

// ConvertDateToDisplay reformats a storage-format date for display.
func (r *Record) ConvertDateToDisplay(date string) (string, error) {
	return r.Dates().ToDisplay(date)
}

// ConvertDateToSave reformats a display-format date for storage.
func (r *Record) ConvertDateToSave(date string) (string, error) {
	return r.Dates().ToSave(date)
}

// ConvertDateToTimestamp parses a display-format date into Unix seconds.
func (r *Record) ConvertDateToTimestamp(date string) (int64, error) {
	return r.Dates().ToTimestamp(date)
}

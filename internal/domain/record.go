package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScalarType is the source representation a column is parsed into.
type ScalarType string

const (
	ScalarText    ScalarType = "text"
	ScalarNumber  ScalarType = "number"
	ScalarInteger ScalarType = "integer"
	ScalarDate    ScalarType = "date"
	ScalarBoolean ScalarType = "boolean"
)

// Column binds a source header to a target field.
type Column struct {
	Header string     `json:"header" mapstructure:"header"`
	Field  string     `json:"field" mapstructure:"field"`
	Type   ScalarType `json:"type" mapstructure:"type"`
}

// Layout is the ordered field table used to turn a row into a Record.
type Layout struct {
	Columns  []Column
	KeyField string
}

// DefaultLayout returns the field table of the standard import file.
func DefaultLayout() Layout {
	return Layout{
		KeyField: "Title",
		Columns: []Column{
			{Header: "Title", Field: "Title", Type: ScalarText},
			{Header: "Choice Field", Field: "Choice_x0020_Field", Type: ScalarText},
			{Header: "Number Field", Field: "Number_x0020_Field", Type: ScalarNumber},
			{Header: "Currency Field", Field: "Currency_x0020_Field", Type: ScalarText},
			{Header: "Date Field", Field: "Date_x0020_Field", Type: ScalarDate},
			{Header: "Lookup Field", Field: "Lookup_x0020_Field", Type: ScalarText},
			{Header: "Yes/No Field", Field: "Yes_x002F_No_x0020_Field", Type: ScalarBoolean},
			{Header: "Person Field", Field: "Person_x0020_Field", Type: ScalarText},
			{Header: "Hyperlink Field", Field: "Hyperlink_x0020_Field", Type: ScalarText},
			{Header: "MM Field", Field: "MM_x0020_Field", Type: ScalarText},
		},
	}
}

// RawField is one field of a Record. A nil Value means the cell was blank.
type RawField struct {
	Name  string
	Value any
}

// Present reports whether the field carries a non-empty value.
func (f RawField) Present() bool {
	if f.Value == nil {
		return false
	}
	return FormatRaw(f.Value) != ""
}

// Record is one source row. It is immutable once built.
type Record struct {
	rowNumber int
	keyField  string
	fields    []RawField
}

// NewRecord creates a record, copying fields to keep it immutable.
func NewRecord(rowNumber int, keyField string, fields []RawField) Record {
	return Record{
		rowNumber: rowNumber,
		keyField:  keyField,
		fields:    copyRawFields(fields),
	}
}

// RowNumber returns the 1-based row of the source file.
func (r Record) RowNumber() int { return r.rowNumber }

// Fields returns the fields in declaration order.
func (r Record) Fields() []RawField { return copyRawFields(r.fields) }

// Get returns the raw value of a field.
func (r Record) Get(name string) (any, bool) {
	for _, field := range r.fields {
		if field.Name == name {
			return field.Value, field.Value != nil
		}
	}
	return nil, false
}

// Key returns the unique key of the record, or "" when absent.
func (r Record) Key() string {
	value, ok := r.Get(r.keyField)
	if !ok {
		return ""
	}
	return FormatRaw(value)
}

// KeyField returns the name of the unique key field.
func (r Record) KeyField() string { return r.keyField }

// FormatRaw renders a raw value as text.
func FormatRaw(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func copyRawFields(fields []RawField) []RawField {
	if fields == nil {
		return nil
	}
	clone := make([]RawField, len(fields))
	copy(clone, fields)
	return clone
}

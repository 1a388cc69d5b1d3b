package tokenizer

import (
	"time"
)

type Kind int

const (
	// Integer is a base 10 integer, surrounding blanks allowed.
	Integer Kind = iota
	// Decimal is a floating point number.
	Decimal
	// Fixed is a string kept exactly as it appears in its columns.
	Fixed
	// Trimmed is a string with surrounding blanks removed.
	Trimmed
	// Date is a dd.mm.yyyy calendar date.
	Date
	// Time is an HHMM service time. Hours may run past 24 and a leading
	// minus marks a restricted stop event.
	Time
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Fixed:
		return "fixed string"
	case Trimmed:
		return "string"
	case Date:
		return "date"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// ToEnd as a Field's To column extends the field to the end of the line.
const ToEnd = 0

// Field describes one column range of a fixed-width layout, or one token
// position of a delimited layout. Columns are 1-based and inclusive.
type Field struct {
	Name     string
	From     int
	To       int
	Kind     Kind
	Optional bool
}

// Layout is the grammar of one record type.
type Layout struct {
	Name      string
	Delimited bool
	// Quote, when set on a delimited layout, groups blanks inside quotes
	// into a single token.
	Quote  rune
	Fields []Field
}

func (l *Layout) index(name string) int {
	for i, field := range l.Fields {
		if field.Name == name {
			return i
		}
	}

	return -1
}

// Value is a single typed field value.
type Value struct {
	Present bool

	Int      int
	Float    float64
	Text     string
	Date     time.Time
	Minutes  int
	Negative bool
}

// Row holds the typed values of one tokenized line, addressable by field
// name.
type Row struct {
	layout *Layout
	values []Value
}

func (r Row) value(name string) Value {
	if r.layout == nil {
		return Value{}
	}

	i := r.layout.index(name)
	if i < 0 {
		panic("tokenizer: layout " + r.layout.Name + " has no field " + name)
	}

	return r.values[i]
}

func (r Row) Has(name string) bool {
	return r.value(name).Present
}

func (r Row) Int(name string) int {
	return r.value(name).Int
}

// OptionalInt returns the value and whether the field was filled.
func (r Row) OptionalInt(name string) (int, bool) {
	v := r.value(name)
	return v.Int, v.Present
}

func (r Row) Float(name string) float64 {
	return r.value(name).Float
}

func (r Row) String(name string) string {
	return r.value(name).Text
}

func (r Row) Date(name string) time.Time {
	return r.value(name).Date
}

// Time returns minutes after the start of the service day and whether the
// value was negative.
func (r Row) Time(name string) (int, bool) {
	v := r.value(name)
	return v.Minutes, v.Negative
}

func (r Row) Len() int {
	return len(r.values)
}

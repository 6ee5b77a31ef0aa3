package domain

import (
	"strconv"
	"time"
)

// DateLayout is the canonical date format used when rendering date cells.
const DateLayout = "2006-01-02"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindDate
)

// String returns the lower-case kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Value is a single table cell. It holds exactly one of text, number or date,
// or is the explicit missing marker. The zero Value is missing.
type Value struct {
	kind Kind
	text string
	num  float64
	date time.Time
}

// Missing returns the explicit missing marker
func Missing() Value { return Value{} }

// Text wraps a string cell
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a numeric cell
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Date wraps a date cell. The time is normalized to UTC.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t.UTC()} }

// Kind reports which variant the value holds
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is the missing marker
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Text returns the string and true if the value is text
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Number returns the float and true if the value is numeric
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Date returns the time and true if the value is a date
func (v Value) Date() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// Equal reports whether two values hold the same variant and payload.
// Two missing values are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	default:
		return true
	}
}

// Key returns a string that is identical for equal values and distinct for
// values of different kinds. Used to build de-duplication keys.
func (v Value) Key() string {
	switch v.kind {
	case KindText:
		return "t:" + v.text
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindDate:
		return "d:" + strconv.FormatInt(v.date.UnixNano(), 10)
	default:
		return "m:"
	}
}

// String renders the value for presentation. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.date.Hour() == 0 && v.date.Minute() == 0 && v.date.Second() == 0 && v.date.Nanosecond() == 0 {
			return v.date.Format(DateLayout)
		}
		return v.date.Format(time.RFC3339)
	default:
		return ""
	}
}

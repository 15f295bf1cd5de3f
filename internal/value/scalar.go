// Package value defines the typed scalar model for CSV cells and the
// heuristic mapper that coerces raw field text into scalars and back.
package value

import (
	"strconv"
	"time"
)

// Kind identifies which member of the Scalar union is set.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindDate
	KindBool
	KindError
	KindString
)

// ErrorCode is one of the fixed spreadsheet error sentinels.
// No other codes are recognized.
type ErrorCode string

const (
	ErrNA    ErrorCode = "#N/A"
	ErrRef   ErrorCode = "#REF!"
	ErrName  ErrorCode = "#NAME?"
	ErrDiv0  ErrorCode = "#DIV/0!"
	ErrNull  ErrorCode = "#NULL!"
	ErrValue ErrorCode = "#VALUE!"
	ErrNum   ErrorCode = "#NUM!"
)

// errorCodes is the closed set of recognized sentinels, matched case-sensitively.
var errorCodes = map[string]ErrorCode{
	string(ErrNA):    ErrNA,
	string(ErrRef):   ErrRef,
	string(ErrName):  ErrName,
	string(ErrDiv0):  ErrDiv0,
	string(ErrNull):  ErrNull,
	string(ErrValue): ErrValue,
	string(ErrNum):   ErrNum,
}

// Scalar is a tagged union over null | number | date | bool | ErrorValue | string.
// The zero value is the null scalar.
type Scalar struct {
	kind Kind
	num  float64
	date time.Time
	b    bool
	code ErrorCode
	str  string
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// Number returns a numeric scalar.
func Number(f float64) Scalar { return Scalar{kind: KindNumber, num: f} }

// Date returns a date scalar.
func Date(t time.Time) Scalar { return Scalar{kind: KindDate, date: t} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, b: b} }

// ErrVal returns an error-sentinel scalar.
func ErrVal(code ErrorCode) Scalar { return Scalar{kind: KindError, code: code} }

// String returns a string scalar.
func String(s string) Scalar { return Scalar{kind: KindString, str: s} }

// Kind reports which member is set.
func (s Scalar) Kind() Kind { return s.kind }

// IsNull reports whether the scalar is null.
func (s Scalar) IsNull() bool { return s.kind == KindNull }

// Float returns the numeric value. Zero unless Kind is KindNumber.
func (s Scalar) Float() float64 { return s.num }

// Time returns the date value. Zero unless Kind is KindDate.
func (s Scalar) Time() time.Time { return s.date }

// Boolean returns the bool value. False unless Kind is KindBool.
func (s Scalar) Boolean() bool { return s.b }

// Code returns the error sentinel. Empty unless Kind is KindError.
func (s Scalar) Code() ErrorCode { return s.code }

// Text returns the string value. Empty unless Kind is KindString.
func (s Scalar) Text() string { return s.str }

// Equal reports whether two scalars have the same kind and payload.
// Dates compare with time.Time.Equal so differing locations of the
// same instant are equal.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindNull:
		return true
	case KindNumber:
		return s.num == o.num
	case KindDate:
		return s.date.Equal(o.date)
	case KindBool:
		return s.b == o.b
	case KindError:
		return s.code == o.code
	default:
		return s.str == o.str
	}
}

// String implements fmt.Stringer for diagnostics and test failure output.
func (s Scalar) String() string {
	switch s.kind {
	case KindNull:
		return "<null>"
	case KindNumber:
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindDate:
		return s.date.Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindError:
		return string(s.code)
	default:
		return s.str
	}
}

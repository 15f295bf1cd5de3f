package value

// mapper.go implements the field-to-scalar heuristic as a closed,
// ordered decision table. Precedence, first match wins:
//
//  1. empty string        -> null
//  2. full-token number   -> number (NaN and infinities disqualify)
//  3. configured date formats, in list order, strict parse -> date
//  4. exactly "true"/"false" -> bool
//  5. one of the seven error sentinels -> error value
//  6. anything else       -> the original string, unmodified
//
// There is no open-ended type inspection; replacing the mapper means
// supplying a different MapFunc with the same contract (field string in,
// Scalar out, no side effects).

import (
	"math"
	"strconv"
	"time"
)

// MapFunc is the replaceable mapper contract.
type MapFunc func(raw string) Scalar

// DefaultDateFormats are the date layouts tried, in order, unless the
// caller overrides them: timezone-qualified ISO timestamp, the same
// without timezone, MM-DD-YYYY, YYYY-MM-DD.
var DefaultDateFormats = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"01-02-2006",
	"2006-01-02",
}

// Mapper coerces raw field text into scalars, parameterized by an
// ordered list of date layouts. A Mapper is stateless and safe to share.
type Mapper struct {
	dateFormats []string
}

// NewMapper returns a mapper using the given date layouts in order.
// With no layouts, DefaultDateFormats apply.
func NewMapper(dateFormats ...string) *Mapper {
	if len(dateFormats) == 0 {
		dateFormats = DefaultDateFormats
	}
	return &Mapper{dateFormats: dateFormats}
}

// Map converts one raw field into a Scalar.
func (m *Mapper) Map(raw string) Scalar {
	if raw == "" {
		return Null()
	}

	// strconv.ParseFloat consumes the whole token, so "12abc" falls
	// through. It does accept "inf" and "nan" spellings, which the
	// number branch must reject.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return Number(f)
		}
	}

	for _, layout := range m.dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date(t)
		}
	}

	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	if code, ok := errorCodes[raw]; ok {
		return ErrVal(code)
	}

	return String(raw)
}

// Format is the inverse direction, used when writing scalars back out
// as CSV fields. Dates use the first configured layout; numbers use the
// shortest representation that round-trips.
func (m *Mapper) Format(s Scalar) string {
	switch s.Kind() {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(s.Float(), 'f', -1, 64)
	case KindDate:
		return s.Time().Format(m.dateFormats[0])
	case KindBool:
		return strconv.FormatBool(s.Boolean())
	case KindError:
		return string(s.Code())
	default:
		return s.Text()
	}
}

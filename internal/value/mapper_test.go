package value

import (
	"testing"
	"time"
)

func TestMapperPrecedence(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		name string
		raw  string
		want Scalar
	}{
		{"empty is null", "", Null()},
		{"integer", "42", Number(42)},
		{"decimal", "3.14", Number(3.14)},
		{"negative", "-17.5", Number(-17.5)},
		{"scientific", "1e3", Number(1000)},
		{"iso date", "2024-01-15", Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"us date", "01-15-2024", Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"timestamp with zone", "2024-01-15T10:30:00Z", Date(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))},
		{"timestamp without zone", "2024-01-15T10:30:00", Date(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))},
		{"bool true", "true", Bool(true)},
		{"bool false", "false", Bool(false)},
		{"div zero sentinel", "#DIV/0!", ErrVal(ErrDiv0)},
		{"na sentinel", "#N/A", ErrVal(ErrNA)},
		{"ref sentinel", "#REF!", ErrVal(ErrRef)},
		{"plain string", "hello", String("hello")},
		{"partial number falls through", "12abc", String("12abc")},
		{"nan is not a number", "NaN", String("NaN")},
		{"infinity is not a number", "+Inf", String("+Inf")},
		{"case sensitive bool", "True", String("True")},
		{"case sensitive sentinel", "#n/a", String("#n/a")},
		{"unknown sentinel", "#OOPS!", String("#OOPS!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Map(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("Map(%q) = %v (kind %d), want %v (kind %d)",
					tt.raw, got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestMapperFormatOrder(t *testing.T) {
	// First matching format wins; a custom list can change which layout
	// claims an ambiguous token.
	m := NewMapper("2006-01-02", "01-02-2006")
	got := m.Map("2024-01-15")
	want := Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if !got.Equal(want) {
		t.Fatalf("Map = %v, want %v", got, want)
	}

	// With only a US layout, the ISO token is not a date at all.
	us := NewMapper("01-02-2006")
	if got := us.Map("2024-01-15"); got.Kind() != KindString {
		t.Fatalf("Map with US-only layouts = %v, want string passthrough", got)
	}
}

func TestMapperFormatInverse(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		name string
		in   Scalar
		want string
	}{
		{"null", Null(), ""},
		{"integer", Number(42), "42"},
		{"decimal", Number(3.14), "3.14"},
		{"bool", Bool(true), "true"},
		{"sentinel", ErrVal(ErrValue), "#VALUE!"},
		{"string verbatim", String("12abc"), "12abc"},
		{"date first layout", Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "2024-01-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Format(tt.in); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper()
	scalars := []Scalar{
		Number(42),
		Number(3.14),
		Bool(false),
		ErrVal(ErrNum),
		String("hello"),
		Date(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	for _, s := range scalars {
		got := m.Map(m.Format(s))
		if !got.Equal(s) {
			t.Errorf("round trip of %v produced %v", s, got)
		}
	}
}

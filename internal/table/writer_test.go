package table

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pjensen/csvflow/internal/value"
)

func TestWriteSheetAndRowOrder(t *testing.T) {
	wb := NewWorkbook()
	wb.AddSheet("second", []Row{{value.String("s2r1")}})
	wb.AddSheet("first", []Row{{value.String("f1r1")}, {value.String("f1r2")}})

	w := NewWriter(WriterOptions{})
	buf, err := w.WriteBuffer(context.Background(), wb)
	if err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	// Workbook order, not lexicographic: "second" was added first.
	want := "s2r1\nf1r1\nf1r2\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteDropsRowNumberColumn(t *testing.T) {
	wb := NewWorkbook()
	wb.HasRowNumbers = true
	wb.AddSheet("s", []Row{
		{value.Number(1), value.String("a"), value.String("b")},
		{value.Number(2), value.String("c"), value.String("d")},
	})

	w := NewWriter(WriterOptions{})
	buf, err := w.WriteBuffer(context.Background(), wb)
	if err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	want := "a,b\nc,d\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteFormatOverride(t *testing.T) {
	wb := NewWorkbook()
	wb.AddSheet("s", []Row{{value.Number(1)}})

	w := NewWriter(WriterOptions{
		Format: func(value.Scalar) string { return "X" },
	})
	buf, err := w.WriteBuffer(context.Background(), wb)
	if err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}
	if buf.String() != "X\n" {
		t.Fatalf("output = %q, want %q", buf.String(), "X\n")
	}
}

type rejectingFormatter struct{ err error }

func (f *rejectingFormatter) Write([]string) error { return f.err }
func (f *rejectingFormatter) Flush() error         { return nil }

func TestWriteRejectsOnFormatError(t *testing.T) {
	boom := errors.New("bad record")
	wb := NewWorkbook()
	wb.AddSheet("s", []Row{{value.String("a")}})

	w := NewWriter(WriterOptions{
		Formatter: func(io.Writer) RecordFormatter { return &rejectingFormatter{err: boom} },
	})
	_, err := w.WriteBuffer(context.Background(), wb)

	var fe *FormatError
	if !errors.As(err, &fe) || !errors.Is(fe.Err, boom) {
		t.Fatalf("err = %v, want FormatError wrapping %v", err, boom)
	}
	if fe.Sheet != "s" {
		t.Errorf("FormatError.Sheet = %q, want %q", fe.Sheet, "s")
	}
}

func TestRoundTrip(t *testing.T) {
	// Writing a table and reading it back with the same date formats must
	// reproduce equivalent scalars for every row.
	original := Table{
		"data": {
			{value.Number(42), value.Number(3.14), value.Bool(true)},
			{value.Null(), value.String("hello"), value.ErrVal(value.ErrNA)},
			{value.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), value.Bool(false), value.String("12abc")},
			{value.ErrVal(value.ErrValue), value.Number(-17), value.String("free-form, quoted \"text\"")},
		},
	}

	w := NewWriter(WriterOptions{})
	buf, err := w.WriteBuffer(context.Background(), WorkbookFromTable(original))
	if err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	r := NewReader(ReaderOptions{SheetName: "data"})
	got, err := r.Read(context.Background(), strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	origRows := original.Rows("data")
	gotRows := got.Rows("data")
	if len(gotRows) != len(origRows) {
		t.Fatalf("got %d rows, want %d", len(gotRows), len(origRows))
	}
	for i, row := range gotRows {
		if len(row) != len(origRows[i]) {
			t.Fatalf("row %d has %d cols, want %d", i, len(row), len(origRows[i]))
		}
		for j, cell := range row {
			if !cell.Equal(origRows[i][j]) {
				t.Errorf("row %d col %d = %v (kind %d), want %v (kind %d)",
					i, j, cell, cell.Kind(), origRows[i][j], origRows[i][j].Kind())
			}
		}
	}
}

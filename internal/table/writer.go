package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pjensen/csvflow/internal/value"
)

// FormatFunc serializes one scalar to a field string.
type FormatFunc func(value.Scalar) string

// WriterOptions configures a Writer.
type WriterOptions struct {
	// DateFormats is the ordered layout list for the default formatter;
	// dates serialize with the first entry.
	DateFormats []string

	// Format replaces the scalar-to-field serialization entirely.
	Format FormatFunc

	// Formatter overrides the default encoding/csv record formatter.
	Formatter FormatterFactory
}

// Writer iterates a workbook's sheets and rows and feeds each serialized
// record to a record formatter writing to the destination stream.
type Writer struct {
	opts     WriterOptions
	formatFn FormatFunc
}

// NewWriter returns a Writer for the given options.
func NewWriter(opts WriterOptions) *Writer {
	formatFn := opts.Format
	if formatFn == nil {
		formatFn = value.NewMapper(opts.DateFormats...).Format
	}
	return &Writer{opts: opts, formatFn: formatFn}
}

// Write serializes wb to dst: sheets in workbook order, rows in row
// order. When the workbook carries a leading row-number pseudo-column it
// is dropped before mapping. The write completes only once the formatter
// has flushed; any formatter error fails the whole write.
func (w *Writer) Write(ctx context.Context, dst io.Writer, wb *Workbook) error {
	var formatter RecordFormatter
	if w.opts.Formatter != nil {
		formatter = w.opts.Formatter(dst)
	} else {
		formatter = NewCSVFormatter(dst)
	}

	n := 0
	for _, sheet := range wb.Order {
		for _, row := range wb.Sheets[sheet] {
			if n%contextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("write cancelled at record %d: %w", n, err)
				}
			}
			n++

			values := row
			if wb.HasRowNumbers && len(values) > 0 {
				values = values[1:]
			}

			record := make([]string, len(values))
			for i, v := range values {
				record[i] = w.formatFn(v)
			}
			if err := formatter.Write(record); err != nil {
				return &FormatError{Sheet: sheet, Err: err}
			}
		}
	}

	if err := formatter.Flush(); err != nil {
		return &StreamError{Err: err}
	}
	return nil
}

// WriteFile writes wb to a file-backed destination. It composes with
// Write rather than duplicating its logic.
func (w *Writer) WriteFile(ctx context.Context, path string, wb *Workbook) error {
	f, err := os.Create(path)
	if err != nil {
		return &StreamError{Err: err}
	}

	if err := w.Write(ctx, f, wb); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteBuffer writes wb to a fully in-memory destination.
func (w *Writer) WriteBuffer(ctx context.Context, wb *Workbook) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := w.Write(ctx, &buf, wb); err != nil {
		return nil, err
	}
	return &buf, nil
}

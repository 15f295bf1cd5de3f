package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pjensen/csvflow/internal/value"
)

// contextCheckInterval is how often (in records) a streaming read checks
// for cancellation. Per-record checks are wasted work; every 100 records
// is sub-millisecond between checks.
var contextCheckInterval = 100

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// SheetName is the bucket key all rows of one read accumulate under.
	// Empty selects DefaultSheetName.
	SheetName string

	// DateFormats is the ordered layout list for the default mapper.
	DateFormats []string

	// Map replaces the value mapper entirely. It must keep the contract:
	// field string in, scalar out, no side effects.
	Map value.MapFunc

	// FieldsPerRecord is passed through to the record splitter for
	// fixed-arity validation. Zero or negative disables it.
	FieldsPerRecord int

	// Splitter overrides the default encoding/csv record splitter.
	Splitter SplitterFactory
}

// Reader drives a record splitter and value mapper over an input stream,
// accumulating typed rows into a sheet-keyed table.
type Reader struct {
	opts  ReaderOptions
	mapFn value.MapFunc
}

// NewReader returns a Reader for the given options.
func NewReader(opts ReaderOptions) *Reader {
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	mapFn := opts.Map
	if mapFn == nil {
		mapFn = value.NewMapper(opts.DateFormats...).Map
	}
	return &Reader{opts: opts, mapFn: mapFn}
}

// SheetName returns the bucket key this reader accumulates under.
func (r *Reader) SheetName() string { return r.opts.SheetName }

// Read consumes src to end-of-stream and returns the full table. A single
// read fills exactly one sheet bucket; rows keep source order. On any
// stream error the read fails whole — no partial table is returned.
func (r *Reader) Read(ctx context.Context, src io.Reader) (Table, error) {
	var rows []Row
	err := r.ReadRows(ctx, src, func(row Row) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Table{r.opts.SheetName: rows}, nil
}

// ReadRows streams typed rows to fn without accumulating them, so peak
// memory stays independent of input size. An error from fn aborts the
// read and is returned as-is.
func (r *Reader) ReadRows(ctx context.Context, src io.Reader, fn RowFunc) error {
	fieldsPerRecord := r.opts.FieldsPerRecord
	if fieldsPerRecord <= 0 {
		fieldsPerRecord = -1
	}

	var splitter RecordSplitter
	if r.opts.Splitter != nil {
		splitter = r.opts.Splitter(src)
	} else {
		splitter = NewCSVSplitter(src, fieldsPerRecord)
	}

	for n := 0; ; n++ {
		if n%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("read cancelled at record %d: %w", n, err)
			}
		}

		record, err := splitter.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &StreamError{Err: err}
		}

		row := make(Row, len(record))
		for i, field := range record {
			row[i] = r.mapFn(field)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// ReadFile verifies the path exists, opens it, delegates to Read, and
// releases the handle regardless of outcome. A missing path fails with
// ErrNotFound.
func (r *Reader) ReadFile(ctx context.Context, path string) (Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &StreamError{Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &StreamError{Err: err}
	}
	defer f.Close()

	return r.Read(ctx, f)
}

package table

// record.go holds the seams to the external record collaborators. The
// engine never tokenizes quoted or escaped CSV fields itself: splitting
// and formatting are delegated to encoding/csv by default, and callers
// can substitute any implementation of the interfaces.

import (
	"encoding/csv"
	"io"
)

// RecordSplitter consumes a character stream and produces one field
// array per record. Read returns io.EOF at end of stream.
type RecordSplitter interface {
	Read() ([]string, error)
}

// RecordFormatter serializes one field array per record to a destination
// stream. Flush must be called once all records are written.
type RecordFormatter interface {
	Write(record []string) error
	Flush() error
}

// SplitterFactory builds a splitter over a source stream.
type SplitterFactory func(r io.Reader) RecordSplitter

// FormatterFactory builds a formatter over a destination stream.
type FormatterFactory func(w io.Writer) RecordFormatter

// csvSplitter adapts encoding/csv. LazyQuotes tolerates the quoting
// artifacts real-world exports produce; arity is validated only when the
// caller fixes a field count.
type csvSplitter struct {
	r *csv.Reader
}

// NewCSVSplitter returns the default record splitter. fieldsPerRecord
// follows encoding/csv semantics: positive enforces that exact arity,
// zero locks to the first record's arity, negative disables the check.
func NewCSVSplitter(r io.Reader, fieldsPerRecord int) RecordSplitter {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fieldsPerRecord
	cr.LazyQuotes = true
	return &csvSplitter{r: cr}
}

func (s *csvSplitter) Read() ([]string, error) { return s.r.Read() }

// csvFormatter adapts encoding/csv's writer.
type csvFormatter struct {
	w *csv.Writer
}

// NewCSVFormatter returns the default record formatter.
func NewCSVFormatter(w io.Writer) RecordFormatter {
	return &csvFormatter{w: csv.NewWriter(w)}
}

func (f *csvFormatter) Write(record []string) error { return f.w.Write(record) }

func (f *csvFormatter) Flush() error {
	f.w.Flush()
	return f.w.Error()
}

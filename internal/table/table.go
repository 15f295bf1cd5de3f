// Package table implements the tabular read/write engine: a sheet-keyed
// table of typed rows, a Reader that drives a record splitter and value
// mapper over an input stream, and a Writer that serializes a workbook
// back out through a record formatter.
package table

import (
	"sort"

	"github.com/pjensen/csvflow/internal/value"
)

// DefaultSheetName is the bucket key used when a read does not name one.
const DefaultSheetName = "Sheet1"

// Row is an ordered sequence of scalars, one per column, in source
// field order.
type Row []value.Scalar

// RowFunc receives one typed row during a streaming read.
type RowFunc func(row Row) error

// Table maps a sheet identifier to its ordered rows. Rows accumulate for
// the lifetime of one read and belong to the caller once it returns.
type Table map[string][]Row

// Rows returns the bucket for the given sheet, nil if absent.
func (t Table) Rows(sheet string) []Row { return t[sheet] }

// Workbook is the Writer's source: sheets in a fixed order, each holding
// ordered rows.
type Workbook struct {
	// Order lists sheet names in the workbook's own iteration order.
	Order []string
	// Sheets maps each sheet name to its rows.
	Sheets map[string][]Row
	// HasRowNumbers marks rows as carrying a leading row-number
	// pseudo-column, which the Writer drops.
	HasRowNumbers bool
}

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{Sheets: make(map[string][]Row)}
}

// AddSheet appends a sheet. Re-adding a name replaces its rows but keeps
// its original position.
func (w *Workbook) AddSheet(name string, rows []Row) {
	if _, exists := w.Sheets[name]; !exists {
		w.Order = append(w.Order, name)
	}
	w.Sheets[name] = rows
}

// WorkbookFromTable builds a workbook from a table. Sheet order is
// lexicographic since the table itself carries none.
func WorkbookFromTable(t Table) *Workbook {
	wb := NewWorkbook()
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wb.AddSheet(name, t[name])
	}
	return wb
}

// Package sink provides batch sinks for the pipeline. The Postgres sink
// persists batches through the COPY protocol, which is one round trip
// per batch instead of one per row.
package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pjensen/csvflow/internal/table"
	"github.com/pjensen/csvflow/internal/value"
)

// Postgres delivers batches to one table via pgx CopyFrom. Rows must
// have as many columns as the configured column list.
type Postgres struct {
	pool    *pgxpool.Pool
	table   pgx.Identifier
	columns []string
}

// NewPostgres returns a sink writing to the named table and columns.
func NewPostgres(pool *pgxpool.Pool, tableName string, columns []string) *Postgres {
	return &Postgres{
		pool:    pool,
		table:   pgx.Identifier{tableName},
		columns: columns,
	}
}

// Accept implements batch.Sink. A COPY failure aborts the batch whole;
// the caller decides whether to re-run the read.
func (s *Postgres) Accept(ctx context.Context, rows []table.Row) error {
	n, err := s.pool.CopyFrom(ctx, s.table, s.columns, &copySource{rows: rows, width: len(s.columns)})
	if err != nil {
		return fmt.Errorf("copy to %s: %w", s.table.Sanitize(), err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy to %s: wrote %d of %d rows", s.table.Sanitize(), n, len(rows))
	}
	return nil
}

// copySource adapts a batch to pgx.CopyFromSource.
type copySource struct {
	rows  []table.Row
	width int
	idx   int
	err   error
}

func (c *copySource) Next() bool {
	return c.err == nil && c.idx < len(c.rows)
}

func (c *copySource) Values() ([]any, error) {
	row := c.rows[c.idx]
	c.idx++

	if len(row) != c.width {
		c.err = fmt.Errorf("row %d has %d columns, expected %d", c.idx-1, len(row), c.width)
		return nil, c.err
	}

	out := make([]any, len(row))
	for i, cell := range row {
		out[i] = scalarValue(cell)
	}
	return out, nil
}

func (c *copySource) Err() error { return c.err }

// scalarValue maps a scalar to the value handed to the driver. Error
// sentinels persist as their code text; nulls persist as SQL NULL.
func scalarValue(s value.Scalar) any {
	switch s.Kind() {
	case value.KindNull:
		return nil
	case value.KindNumber:
		return s.Float()
	case value.KindDate:
		return s.Time()
	case value.KindBool:
		return s.Boolean()
	case value.KindError:
		return string(s.Code())
	default:
		return s.Text()
	}
}

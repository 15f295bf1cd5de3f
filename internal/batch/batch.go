// Package batch decouples peak memory from total row count: rows from a
// streaming read accumulate into bounded batches that are handed to a
// sink synchronously, so arbitrarily large inputs process in constant
// space.
package batch

import (
	"context"
	"fmt"

	"github.com/pjensen/csvflow/internal/table"
)

// DefaultSize is the batch capacity used when none is configured.
const DefaultSize = 1000

// Sink receives full batches. It is expected to be side-effecting
// (persistence, forwarding) and must tolerate repeated synchronous calls
// from the same goroutine. Sink failures are not retried or isolated: an
// error aborts further delivery for the operation.
type Sink interface {
	Accept(ctx context.Context, rows []table.Row) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rows []table.Row) error

// Accept implements Sink.
func (f SinkFunc) Accept(ctx context.Context, rows []table.Row) error {
	return f(ctx, rows)
}

// Processor accumulates rows and delivers them in bounded batches. The
// batch belongs to the processor until handed to the sink, then a fresh
// one starts. Not safe for concurrent use.
type Processor struct {
	size      int
	sink      Sink
	buf       []table.Row
	failed    bool
	delivered int
	rows      int
}

// New returns a Processor delivering batches of the given size. Zero or
// negative selects DefaultSize.
func New(size int, sink Sink) *Processor {
	if size <= 0 {
		size = DefaultSize
	}
	return &Processor{
		size: size,
		sink: sink,
		buf:  make([]table.Row, 0, size),
	}
}

// Push accepts one row. When the batch reaches capacity it is handed to
// the sink and cleared before more rows are accepted. After a sink
// failure the processor refuses further rows.
func (p *Processor) Push(ctx context.Context, row table.Row) error {
	if p.failed {
		return fmt.Errorf("batch: delivery aborted by earlier sink failure")
	}

	p.buf = append(p.buf, row)
	p.rows++
	if len(p.buf) >= p.size {
		return p.deliver(ctx)
	}
	return nil
}

// Flush delivers a remaining partial batch exactly once. It is a no-op
// when the batch is empty — the sink never sees an empty batch.
func (p *Processor) Flush(ctx context.Context) error {
	if p.failed {
		return fmt.Errorf("batch: delivery aborted by earlier sink failure")
	}
	if len(p.buf) == 0 {
		return nil
	}
	return p.deliver(ctx)
}

func (p *Processor) deliver(ctx context.Context) error {
	out := p.buf
	p.buf = make([]table.Row, 0, p.size)
	if err := p.sink.Accept(ctx, out); err != nil {
		p.failed = true
		return err
	}
	p.delivered++
	return nil
}

// RowFunc adapts the processor to a streaming read's per-row callback.
func (p *Processor) RowFunc(ctx context.Context) table.RowFunc {
	return func(row table.Row) error {
		return p.Push(ctx, row)
	}
}

// Delivered returns the number of batches handed to the sink.
func (p *Processor) Delivered() int { return p.delivered }

// Rows returns the number of rows accepted so far.
func (p *Processor) Rows() int { return p.rows }

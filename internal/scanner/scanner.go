// Package scanner converts arbitrary, unaligned text chunks into discrete
// logical lines under manual flow control.
//
// A Scanner buffers partial text across chunk boundaries, splits on a
// configurable delimiter, and supports corking (queue lines instead of
// emitting), pausing (drop incoming chunks), and auto-flush thresholds.
// Splitting is chunk-boundary-independent: a delimiter straddling two
// chunks produces the same lines as one that arrives whole.
//
// Notification is through per-instance registered handlers (OnLine, OnDone,
// OnError, OnDrain). All operations are synchronous; a Scanner is not safe
// for concurrent use and owns its buffer and queue exclusively.
package scanner

import (
	"bytes"
	"fmt"
)

// State is the scanner's flow-control state.
type State int

const (
	// StateIdle emits complete lines as they are scanned.
	StateIdle State = iota
	// StateCorked queues complete lines until a flush or Uncork.
	StateCorked
	// StatePaused drops incoming chunks entirely. This loss is deliberate:
	// Write returns false and the data never reaches the buffer.
	StatePaused
)

// DefaultMaxBufferSize is the pending-text size that forces a flush of
// queued lines (1 MiB). The forced flush never drops or truncates data.
const DefaultMaxBufferSize = 1 << 20

// Options configures a Scanner.
type Options struct {
	// Delimiter is the literal line terminator. Empty selects the default:
	// one optional carriage return followed by a line feed, or a bare
	// line feed.
	Delimiter string

	// MaxBufferSize is the pending-text byte count that forces a flush.
	// Zero or negative selects DefaultMaxBufferSize.
	MaxBufferSize int

	// MaxLineCount, when positive, caps emitted lines. Reaching the cap
	// raises one error signal; further complete lines are discarded.
	MaxLineCount int

	// FlushLineCount, when positive, forces a flush every time the line
	// count reaches a multiple of it.
	FlushLineCount int

	// Transform, when set, is applied to every line at emission time,
	// including lines released from the cork queue.
	Transform func(string) string

	// Progress, when set, is invoked with the cumulative line count after
	// each emission.
	Progress func(int)
}

// Scanner is a stateful chunk-to-line splitter. Create one with New.
type Scanner struct {
	opts Options

	state State
	// resumeTo is the state Pause interrupted, restored by Resume. Cork
	// and Uncork while paused retarget it instead of the live state.
	resumeTo State

	pending   []byte
	queue     []string
	lineCount int
	limitHit  bool

	onLine  func(string)
	onDone  func()
	onError func(error)
	onDrain func()
}

// New returns a Scanner in StateIdle with an empty buffer.
func New(opts Options) *Scanner {
	if opts.MaxBufferSize <= 0 {
		opts.MaxBufferSize = DefaultMaxBufferSize
	}
	return &Scanner{opts: opts}
}

// OnLine registers the handler for emitted lines.
func (s *Scanner) OnLine(fn func(string)) { s.onLine = fn }

// OnDone registers the handler for the completion signal raised by End.
func (s *Scanner) OnDone(fn func()) { s.onDone = fn }

// OnError registers the handler for explicit error signals. The scanner
// never raises errors from its own data path; anomalies are surfaced here
// for the consumer to interpret.
func (s *Scanner) OnError(fn func(error)) { s.onError = fn }

// OnDrain registers the handler for the drain signal raised by Uncork.
func (s *Scanner) OnDrain(fn func()) { s.onDrain = fn }

// Write appends a chunk, emits or queues any complete lines it finishes,
// and reports whether the caller may keep writing at full rate.
//
// While paused the chunk is dropped entirely — no buffering, no emission —
// and Write returns false. Otherwise Write returns true unless corked.
func (s *Scanner) Write(chunk string) bool {
	if s.state == StatePaused {
		return false
	}

	s.pending = append(s.pending, chunk...)
	s.scan()

	// Safety valve: oversized pending text forces queued lines out.
	if len(s.pending) > s.opts.MaxBufferSize {
		s.flush()
	}

	return s.state != StateCorked
}

// scan advances a single pointer over the pending buffer, handing off each
// delimiter-terminated line and compacting the unconsumed tail once.
func (s *Scanner) scan() {
	start := 0
	for {
		line, next, ok := s.nextLine(start)
		if !ok {
			break
		}
		s.accept(line)
		start = next
	}
	if start > 0 {
		s.pending = append(s.pending[:0], s.pending[start:]...)
	}
}

// nextLine finds the next complete line at or after start. It returns the
// line text, the offset just past its delimiter, and whether a complete
// line was found.
func (s *Scanner) nextLine(start int) (string, int, bool) {
	if d := s.opts.Delimiter; d != "" {
		i := bytes.Index(s.pending[start:], []byte(d))
		if i < 0 {
			return "", 0, false
		}
		return string(s.pending[start : start+i]), start + i + len(d), true
	}

	i := bytes.IndexByte(s.pending[start:], '\n')
	if i < 0 {
		return "", 0, false
	}
	end := start + i
	lineEnd := end
	if lineEnd > start && s.pending[lineEnd-1] == '\r' {
		lineEnd--
	}
	return string(s.pending[start:lineEnd]), end + 1, true
}

// accept routes a complete line: queued while corked, emitted otherwise.
// Queued lines stay untransformed; the transform runs at emission.
func (s *Scanner) accept(line string) {
	if s.state == StateCorked {
		s.queue = append(s.queue, line)
		return
	}
	s.emit(line)
}

func (s *Scanner) emit(line string) {
	if s.opts.MaxLineCount > 0 && s.lineCount >= s.opts.MaxLineCount {
		if !s.limitHit {
			s.limitHit = true
			s.EmitError(fmt.Errorf("scanner: line limit %d reached, discarding further lines", s.opts.MaxLineCount))
		}
		return
	}

	if s.opts.Transform != nil {
		line = s.opts.Transform(line)
	}
	s.lineCount++
	if s.onLine != nil {
		s.onLine(line)
	}
	if s.opts.Progress != nil {
		s.opts.Progress(s.lineCount)
	}
	if s.opts.FlushLineCount > 0 && s.lineCount%s.opts.FlushLineCount == 0 {
		s.flush()
	}
}

// flush emits every queued line in FIFO order. The queue is detached
// before emission so it drains atomically: no new line can join the
// batch being released.
func (s *Scanner) flush() {
	if len(s.queue) == 0 {
		return
	}
	queued := s.queue
	s.queue = nil
	for _, line := range queued {
		s.emit(line)
	}
}

// Cork defers subsequent complete lines into the queue.
func (s *Scanner) Cork() {
	if s.state == StatePaused {
		s.resumeTo = StateCorked
		return
	}
	s.state = StateCorked
}

// Uncork releases queued lines in order, applying the transform to each,
// and raises the drain signal.
func (s *Scanner) Uncork() {
	if s.state == StatePaused {
		s.resumeTo = StateIdle
	} else {
		s.state = StateIdle
	}
	s.flush()
	if s.onDrain != nil {
		s.onDrain()
	}
}

// Pause drops subsequent writes until Resume.
func (s *Scanner) Pause() {
	if s.state == StatePaused {
		return
	}
	s.resumeTo = s.state
	s.state = StatePaused
}

// Resume restores the interrupted state, re-submits any pending partial
// text through Write — which can re-split it if a delimiter is already
// buffered — and then flushes queued lines. The replay-then-flush order
// is load-bearing and must not change.
func (s *Scanner) Resume() {
	if s.state != StatePaused {
		return
	}
	s.state = s.resumeTo

	if len(s.pending) > 0 {
		replay := string(s.pending)
		s.pending = s.pending[:0]
		s.Write(replay)
	}
	s.flush()
}

// End emits a non-empty pending fragment as a final line exactly as-is,
// even though it was never delimiter-terminated, releases anything still
// queued, raises the completion signal, invokes the optional callback,
// and resets buffer state so the scanner can be reused.
func (s *Scanner) End(callback func()) {
	if len(s.pending) > 0 {
		line := string(s.pending)
		s.pending = s.pending[:0]
		s.accept(line)
	}
	s.flush()
	if s.onDone != nil {
		s.onDone()
	}
	if callback != nil {
		callback()
	}
	s.reset()
}

// reset returns the buffer state to its initial values. The Scanner and
// its handlers survive; only the session state restarts.
func (s *Scanner) reset() {
	s.pending = s.pending[:0]
	s.queue = nil
	s.lineCount = 0
	s.limitHit = false
	s.state = StateIdle
	s.resumeTo = StateIdle
}

// EmitError raises an explicit error signal. It is never thrown
// synchronously from the data path; the handler decides what it means.
func (s *Scanner) EmitError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// BufferLen returns the current pending-text length. Diagnostics only.
func (s *Scanner) BufferLen() int { return len(s.pending) }

// LineCount returns the count of lines emitted so far this session.
func (s *Scanner) LineCount() int { return s.lineCount }

// QueueLen returns the number of lines held while corked.
func (s *Scanner) QueueLen() int { return len(s.queue) }

// Corked reports whether new complete lines are being queued.
func (s *Scanner) Corked() bool {
	return s.state == StateCorked || (s.state == StatePaused && s.resumeTo == StateCorked)
}

// Paused reports whether writes are being dropped.
func (s *Scanner) Paused() bool { return s.state == StatePaused }

// Package streamio provides the byte-level stream wrappers the pipeline
// composes with but does not implement itself:
//
//   - DecodeReader: charset decoding with BOM detection/removal
//   - EncodeWriter: charset encoding for output
//   - SniffGzip: transparent gzip decompression when the magic is present
//   - CountingReader: bytes-read tracking for progress reporting
//
// Use WrapSource to apply all input transforms in the correct order.
package streamio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is assumed when no encoding name is configured.
const DefaultEncoding = "utf-8"

// lookup resolves an encoding by its IANA/WHATWG name ("utf-8",
// "windows-1252", "shift_jis", ...).
func lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("streamio: unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// DecodeReader wraps r so reads yield UTF-8 text decoded from the named
// encoding. A byte-order mark overrides the configured encoding and is
// removed; invalid byte sequences decode to U+FFFD rather than failing
// the stream.
func DecodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := lookup(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// EncodeWriter wraps w so UTF-8 writes are transcoded to the named
// encoding. Close flushes any buffered transform state; callers must
// close it before closing the underlying writer.
func EncodeWriter(w io.Writer, encodingName string) (io.WriteCloser, error) {
	enc, err := lookup(encodingName)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

// gzip magic bytes.
const (
	gzipID1 = 0x1f
	gzipID2 = 0x8b
)

// SniffGzip peeks at the stream and transparently decompresses it when
// the gzip magic is present. Plain streams pass through with only the
// buffering the peek required.
func SniffGzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		// Short or empty stream: nothing to decompress.
		return br, nil
	}
	if magic[0] != gzipID1 || magic[1] != gzipID2 {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("streamio: gzip: %w", err)
	}
	return zr, nil
}

// CountingReader wraps an io.Reader to track bytes read, for byte-based
// progress when the row total is unknown.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewCountingReader returns a counting reader with an optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100), or 0 when
// the total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// WrapSource composes the input transforms in the required order: gzip
// sniffing first (compression is outermost on the wire), then charset
// decoding, then byte counting of the decoded text.
func WrapSource(r io.Reader, encodingName string, total int64) (*CountingReader, error) {
	plain, err := SniffGzip(r)
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeReader(plain, encodingName)
	if err != nil {
		return nil, err
	}
	return NewCountingReader(decoded, total), nil
}

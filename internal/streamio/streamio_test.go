package streamio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestDecodeReaderStripsBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		encoding string
		expected string
	}{
		{
			name:     "utf-8 with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			encoding: "utf-8",
			expected: "hello,world",
		},
		{
			name:     "utf-8 without BOM",
			input:    []byte("hello,world"),
			encoding: "utf-8",
			expected: "hello,world",
		},
		{
			name:     "BOM overrides configured encoding",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("caf\xc3\xa9")...),
			encoding: "windows-1252",
			expected: "café",
		},
		{
			name:     "windows-1252 high byte",
			input:    []byte{'c', 'a', 'f', 0xE9},
			encoding: "windows-1252",
			expected: "café",
		},
		{
			name:     "empty stream",
			input:    nil,
			encoding: "utf-8",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeReader(bytes.NewReader(tt.input), tt.encoding)
			if err != nil {
				t.Fatalf("DecodeReader: %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeReaderReplacesInvalidBytes(t *testing.T) {
	r, err := DecodeReader(bytes.NewReader([]byte{'h', 'e', 0x80, 'l', 'o'}), "utf-8")
	if err != nil {
		t.Fatalf("DecodeReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "he�lo" {
		t.Errorf("got %q, want %q", got, "he�lo")
	}
}

func TestDecodeReaderUnknownEncoding(t *testing.T) {
	if _, err := DecodeReader(strings.NewReader(""), "klingon-8"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestEncodeWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := EncodeWriter(&buf, "windows-1252")
	if err != nil {
		t.Fatalf("EncodeWriter: %v", err)
	}
	if _, err := io.WriteString(w, "café"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []byte{'c', 'a', 'f', 0xE9}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded bytes = %v, want %v", buf.Bytes(), want)
	}
}

func TestSniffGzip(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write([]byte("a,b,c\n1,2,3\n")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"gzip stream decompressed", compressed.Bytes(), "a,b,c\n1,2,3\n"},
		{"plain stream passthrough", []byte("a,b,c\n"), "a,b,c\n"},
		{"single byte stream", []byte("x"), "x"},
		{"empty stream", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := SniffGzip(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("SniffGzip: %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	r := NewCountingReader(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 100)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}

	if r.BytesRead != 1000 {
		t.Errorf("BytesRead = %d, want 1000", r.BytesRead)
	}
	if r.Progress() != 100 {
		t.Errorf("Progress = %d, want 100", r.Progress())
	}
}

func TestCountingReaderUnknownTotal(t *testing.T) {
	r := NewCountingReader(strings.NewReader("abc"), 0)
	io.ReadAll(r)
	if r.Progress() != 0 {
		t.Errorf("Progress with unknown total = %d, want 0", r.Progress())
	}
}

func TestWrapSourceComposition(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	zw.Write(append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n")...))
	zw.Close()

	r, err := WrapSource(bytes.NewReader(compressed.Bytes()), "utf-8", 0)
	if err != nil {
		t.Fatalf("WrapSource: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "a,b\n" {
		t.Errorf("got %q, want %q", got, "a,b\n")
	}
	if r.BytesRead != 4 {
		t.Errorf("BytesRead = %d, want 4 (decoded text)", r.BytesRead)
	}
}

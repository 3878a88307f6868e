package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"BCVRates/internal/domain"
	"BCVRates/internal/ports"
)

// WriterSink encodes records as JSON onto a buffered writer.
// Nothing reaches the underlying writer before Close.
type WriterSink struct {
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

var _ ports.Sink = (*WriterSink)(nil)

// NewStdout prints indented records to w, typically os.Stdout.
func NewStdout(w io.Writer) *WriterSink {
	s := newWriterSink(w, nil)
	s.enc.SetIndent("", "  ")
	return s
}

// OpenJSONL appends one compact JSON line per record to the file at path.
func OpenJSONL(path string) (*WriterSink, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonl sink: output path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newWriterSink(f, f), nil
}

func newWriterSink(w io.Writer, closer io.Closer) *WriterSink {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &WriterSink{buf: buf, enc: enc, closer: closer}
}

// Push buffers the record.
func (s *WriterSink) Push(_ context.Context, record domain.OutputRecord) error {
	if record.Rates == nil {
		record.Rates = domain.RateTable{}
	}
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the file, if any.
func (s *WriterSink) Close() error {
	err := s.buf.Flush()
	if err != nil {
		err = fmt.Errorf("flush output: %w", err)
	}
	if s.closer != nil {
		if closeErr := s.closer.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", closeErr))
		}
	}
	return err
}

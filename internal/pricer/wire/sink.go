package wire

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fenrir-labs/pricer/internal/pricer/money"
)

// Sink accepts formatted output lines — quote lines and diagnostics both
// flow through it; buffering is entirely this implementation's concern.
type Sink interface {
	WriteLine(line string) error
}

// Writer is a Sink over a buffered io.Writer. Each line is flushed
// immediately, so a quote's emission completes before the next event is
// read, without imposing assumptions about the underlying writer's own
// buffering.
type Writer struct {
	w *bufio.Writer
	c io.Closer
}

// NewWriter wraps w. If w also implements io.Closer, Close will close it.
func NewWriter(w io.Writer) *Writer {
	closer, _ := w.(io.Closer)
	return &Writer{w: bufio.NewWriter(w), c: closer}
}

// WriteLine writes line followed by a newline and flushes.
func (s *Writer) WriteLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close flushes any buffered bytes and, if the wrapped writer is
// closeable, closes it.
func (s *Writer) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// FormatQuote renders one output line: the timestamp, the action
// character, and either the dollars-and-cents price or the literal "NA"
// when the book is not at target.
func FormatQuote(timestamp uint64, action byte, valid bool, price money.Cents) string {
	if !valid {
		return fmt.Sprintf("%d %c NA", timestamp, action)
	}
	return fmt.Sprintf("%d %c %s", timestamp, action, price.String())
}

package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fenrir-labs/pricer/internal/pricer/book"
	"github.com/fenrir-labs/pricer/internal/pricer/money"
)

// ErrParseError is returned, wrapped with the offending line, for any
// malformed or unrecognized input line. Source.Next resynchronizes to the
// next line boundary before returning.
var ErrParseError = errors.New("parse error")

// Source produces a sequence of parsed events: the core depends only on
// this interface, not on any particular byte-level transport.
type Source interface {
	Next() (Event, error)
}

// LineSource implements Source over one line-per-event ASCII text stream.
type LineSource struct {
	scanner *bufio.Scanner
}

// NewLineSource wraps r in a buffered line scanner.
func NewLineSource(r io.Reader) *LineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &LineSource{scanner: scanner}
}

// Next returns the next parsed event, io.EOF at end of stream, or an error
// wrapping ErrParseError for a malformed line (already resynchronized).
func (s *LineSource) Next() (Event, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return Event{}, err
		}
		return Event{}, io.EOF
	}
	return parseLine(s.scanner.Text())
}

func parseLine(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	switch fields[1] {
	case "A":
		return parseAdd(ts, fields, line)
	case "R":
		return parseReduce(ts, fields, line)
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}
}

func parseAdd(ts uint64, fields []string, line string) (Event, error) {
	// <timestamp> A <order-id> <S|B> <price> <shares>
	if len(fields) != 6 {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	var side book.Side
	switch fields[3] {
	case "S":
		side = book.Sell
	case "B":
		side = book.Buy
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	price, err := money.Parse(fields[4])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	shares, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	return Event{
		Kind:      Add,
		Timestamp: ts,
		ID:        OrderID(fields[2]),
		Side:      side,
		Price:     price,
		Shares:    shares,
	}, nil
}

func parseReduce(ts uint64, fields []string, line string) (Event, error) {
	// <timestamp> R <order-id> <count>
	if len(fields) != 4 {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	count, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrParseError, line)
	}

	return Event{
		Kind:      Reduce,
		Timestamp: ts,
		ID:        OrderID(fields[2]),
		Count:     count,
	}, nil
}

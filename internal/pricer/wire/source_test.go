package wire

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fenrir-labs/pricer/internal/pricer/book"
	"github.com/fenrir-labs/pricer/internal/pricer/money"
)

func TestLineSource_ParsesAdd(t *testing.T) {
	src := NewLineSource(strings.NewReader("1 A ord1 B 10.00 100\n"))

	ev, err := src.Next()

	assert.NoError(t, err)
	price, _ := money.Parse("10.00")
	assert.Equal(t, Event{
		Kind:      Add,
		Timestamp: 1,
		ID:        OrderID("ord1"),
		Side:      book.Buy,
		Price:     price,
		Shares:    100,
	}, ev)
}

func TestLineSource_ParsesReduce(t *testing.T) {
	src := NewLineSource(strings.NewReader("2 R ord1 40\n"))

	ev, err := src.Next()

	assert.NoError(t, err)
	assert.Equal(t, Event{Kind: Reduce, Timestamp: 2, ID: OrderID("ord1"), Count: 40}, ev)
}

func TestLineSource_ResyncsPastMalformedLine(t *testing.T) {
	src := NewLineSource(strings.NewReader("not-a-line\n2 R ord1 40\n"))

	_, err := src.Next()
	assert.True(t, errors.Is(err, ErrParseError))

	ev, err := src.Next()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), ev.Timestamp)
}

func TestLineSource_EOF(t *testing.T) {
	src := NewLineSource(strings.NewReader(""))

	_, err := src.Next()

	assert.ErrorIs(t, err, io.EOF)
}

func TestLineSource_RejectsWrongFieldCount(t *testing.T) {
	src := NewLineSource(strings.NewReader("1 A ord1 B 10.00\n"))

	_, err := src.Next()

	assert.ErrorIs(t, err, ErrParseError)
}

func TestLineSource_RejectsBadSide(t *testing.T) {
	src := NewLineSource(strings.NewReader("1 A ord1 X 10.00 100\n"))

	_, err := src.Next()

	assert.ErrorIs(t, err, ErrParseError)
}

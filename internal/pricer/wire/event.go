// Package wire implements the text-protocol edges the core depends on
// only through interfaces: a tokenizer over the event grammar, and a
// formatter/sink for quote and diagnostic output lines.
package wire

import (
	"github.com/fenrir-labs/pricer/internal/pricer/book"
	"github.com/fenrir-labs/pricer/internal/pricer/money"
)

// Kind discriminates the two event grammars.
type Kind int

const (
	Add Kind = iota
	Reduce
)

// Event is a single parsed line. Only the fields relevant to Kind are
// meaningful, mirroring how the original source reused one order struct
// to carry both Add and Reduce payloads off the wire.
type Event struct {
	Kind      Kind
	Timestamp uint64

	ID OrderID

	// Add fields.
	Side   book.Side
	Price  money.Cents
	Shares uint64

	// Reduce fields.
	Count uint64
}

// OrderID mirrors book.OrderID so the wire package does not force callers
// to import book just to build an Event by hand in tests.
type OrderID = book.OrderID

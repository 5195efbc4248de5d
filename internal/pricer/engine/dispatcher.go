// Package engine drives the parsed event stream into the two order books
// and forwards quote/diagnostic output.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/fenrir-labs/pricer/internal/pricer/book"
	"github.com/fenrir-labs/pricer/internal/pricer/wire"
	"github.com/fenrir-labs/pricer/pricer"
)

// Dispatcher reads parsed events, looks orders up in the shared index,
// mutates the right book, and forwards emitted quote changes to the
// output sink. Grounded on PricerParser::Dispatch from the original
// source (original_source/src/PricerParser.h).
type Dispatcher struct {
	buyBook  *book.OrderBook
	sellBook *book.OrderBook
	index    *book.Index

	quotes wire.Sink
	diag   wire.Sink
	logger zerolog.Logger
}

// NewDispatcher constructs a dispatcher with both books sized to target
// shares, writing quote lines to quotes and diagnostics to diag.
func NewDispatcher(target uint64, quotes, diag wire.Sink, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		buyBook:  book.NewBuyBook(target),
		sellBook: book.NewSellBook(target),
		index:    book.NewIndex(),
		quotes:   quotes,
		diag:     diag,
		logger:   logger,
	}
}

func (d *Dispatcher) bookFor(side book.Side) *book.OrderBook {
	if side == book.Buy {
		return d.buyBook
	}
	return d.sellBook
}

// Dispatch routes one event to the Add or Reduce handler and returns the
// resulting exit code (Success unless a recoverable condition fired).
func (d *Dispatcher) Dispatch(ev wire.Event) pricer.ExitCode {
	switch ev.Kind {
	case wire.Add:
		return d.handleAdd(ev)
	case wire.Reduce:
		return d.handleReduce(ev)
	default:
		return pricer.InvalidData
	}
}

func (d *Dispatcher) handleAdd(ev wire.Event) pricer.ExitCode {
	order := &book.Order{
		ID:          ev.ID,
		Side:        ev.Side,
		LimitPrice:  ev.Price,
		TotalShares: ev.Shares,
	}
	d.index.Put(order)

	b := d.bookFor(order.Side)
	if b.Add(order) {
		d.emit(b, ev.Timestamp)
	}
	return pricer.Success
}

func (d *Dispatcher) handleReduce(ev wire.Event) pricer.ExitCode {
	order, ok := d.index.Get(ev.ID)
	if !ok {
		d.diagnose(pricer.OrderNotFound)
		return pricer.OrderNotFound
	}

	b := d.bookFor(order.Side)
	count := ev.Count
	code := pricer.Success

	if count > order.TotalShares {
		d.diagnose(pricer.ReduceOutOfRange)
		code = pricer.ReduceOutOfRange
		count = order.TotalShares
	}

	if count == order.TotalShares {
		if b.Remove(order) {
			d.emit(b, ev.Timestamp)
		}
		d.index.Delete(order.ID)
	} else if b.Reduce(order, count) {
		d.emit(b, ev.Timestamp)
	}

	return code
}

func (d *Dispatcher) emit(b *book.OrderBook, timestamp uint64) {
	line := wire.FormatQuote(timestamp, b.QuoteChar(), b.Valid(), b.CumulativePrice())
	if err := d.quotes.WriteLine(line); err != nil {
		d.logger.Error().Err(err).Msg("failed writing quote line")
	}
}

func (d *Dispatcher) diagnose(code pricer.ExitCode) {
	if err := d.diag.WriteLine(pricer.Message(code)); err != nil {
		d.logger.Error().Err(err).Msg("failed writing diagnostic")
		return
	}
	d.logger.Debug().Str("code", pricer.Message(code)).Msg("diagnostic emitted")
}

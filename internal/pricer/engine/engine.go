package engine

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/fenrir-labs/pricer/internal/pricer/wire"
	"github.com/fenrir-labs/pricer/pricer"
)

// Engine owns the read-dispatch loop: pull one event at a time from src,
// hand it to the dispatcher, and stop on EOF or a fatal condition.
// Grounded on PricerParser::ProcessStream's main loop.
type Engine struct {
	dispatcher *Dispatcher
	diag       wire.Sink
	logger     zerolog.Logger

	inErrorRun bool
}

// New builds an Engine with its own pair of order books sized to target
// shares.
func New(target uint64, quotes, diag wire.Sink, logger zerolog.Logger) *Engine {
	return &Engine{
		dispatcher: NewDispatcher(target, quotes, diag, logger),
		diag:       diag,
		logger:     logger,
	}
}

// Run drains src until EOF or ctx is canceled, returning the last
// non-success exit code observed (Success if none). A parse error is
// recoverable: the loop resumes at the next line, since the LineSource
// has already resynchronized past the bad one. A contiguous run of
// malformed lines emits the ParserError diagnostic only once, on its
// first line; the next successfully-tokenized line resets the
// suppression.
func (e *Engine) Run(ctx context.Context, src wire.Source) pricer.ExitCode {
	last := pricer.Success

	for {
		select {
		case <-ctx.Done():
			e.logger.Warn().Msg("interrupted, stopping stream")
			return last
		default:
		}

		ev, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return last
			}
			if errors.Is(err, wire.ErrParseError) {
				e.logger.Debug().Err(err).Msg("skipping malformed line")
				if !e.inErrorRun {
					e.inErrorRun = true
					if werr := e.diag.WriteLine(pricer.Message(pricer.ParserError)); werr != nil {
						e.logger.Error().Err(werr).Msg("failed writing diagnostic")
					}
				}
				last = pricer.ParserError
				continue
			}
			e.logger.Error().Err(err).Msg("input stream failed")
			return pricer.InvalidInStream
		}
		e.inErrorRun = false

		if code := e.dispatcher.Dispatch(ev); code != pricer.Success {
			e.logger.Debug().Str("code", pricer.Message(code)).Msg("event produced diagnostic")
			last = code
		}
	}
}

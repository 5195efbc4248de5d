// Package logging configures the operational logger, kept strictly
// separate from the protocol stdout/stderr quote and diagnostic streams:
// this is where "what the pricer is doing" goes, not "what the pricer
// outputs".
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console logger writing to w. Normal runs only log at
// WarnLevel or above, and the engine never logs routine recoverable
// conditions above Debug, so nothing reaches stderr to interleave with
// the diagnostic text written to the wire.Sink. PRICER_DEBUG drops the
// threshold to DebugLevel for tracing.
func New(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("PRICER_DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fenrir-labs/pricer/internal/pricer/wire"
	"github.com/fenrir-labs/pricer/pricer"
)

// lineSink collects written lines for assertion, matching the Sink
// interface the engine depends on.
type lineSink struct {
	lines []string
}

func (s *lineSink) WriteLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

func runInput(t *testing.T, target uint64, input string) (quotes, diag *lineSink, code pricer.ExitCode) {
	t.Helper()
	quotes = &lineSink{}
	diag = &lineSink{}
	eng := New(target, quotes, diag, zerolog.Nop())
	code = eng.Run(context.Background(), wire.NewLineSource(strings.NewReader(input)))
	return
}

func TestEngine_ScenarioFillsAndDisplaces(t *testing.T) {
	input := "" +
		"1 A x B 10.00 300\n" +
		"2 A y B 13.00 200\n" +
		"3 R y 100\n"

	quotes, _, code := runInput(t, 200, input)

	assert.Equal(t, pricer.Success, code)
	assert.Equal(t, []string{
		"1 S 2000.00",
		"2 S 2600.00",
		"3 S 2300.00",
	}, quotes.lines)
}

func TestEngine_SingleOrderMeetingTargetEmits(t *testing.T) {
	input := "1 A a S 50.00 1\n"

	quotes, _, code := runInput(t, 1, input)

	assert.Equal(t, pricer.Success, code)
	assert.Equal(t, []string{"1 B 50.00"}, quotes.lines)
}

func TestEngine_ReduceUnknownOrderDiagnoses(t *testing.T) {
	input := "1 R ghost 10\n"

	quotes, diag, code := runInput(t, 100, input)

	assert.Equal(t, pricer.OrderNotFound, code)
	assert.Empty(t, quotes.lines)
	assert.Equal(t, []string{pricer.Message(pricer.OrderNotFound)}, diag.lines)
}

func TestEngine_ReduceOutOfRangeClampsAndRemoves(t *testing.T) {
	input := "" +
		"1 A a B 10.00 100\n" +
		"2 R a 500\n"

	quotes, diag, code := runInput(t, 100, input)

	assert.Equal(t, pricer.ReduceOutOfRange, code)
	assert.Equal(t, []string{pricer.Message(pricer.ReduceOutOfRange)}, diag.lines)
	assert.Equal(t, []string{"1 S 1000.00", "2 S NA"}, quotes.lines)
}

func TestEngine_MalformedLineIsSkippedAndStreamContinues(t *testing.T) {
	input := "garbage line\n1 A a B 10.00 100\n"

	quotes, diag, code := runInput(t, 100, input)

	assert.Equal(t, pricer.ParserError, code)
	assert.Equal(t, []string{"1 S 1000.00"}, quotes.lines)
	assert.Equal(t, []string{pricer.Message(pricer.ParserError)}, diag.lines)
}

// TestEngine_ParserErrorSuppressedWithinContiguousRun mirrors scenario 5:
// a run of consecutive malformed lines emits the diagnostic only once,
// and a later, independent run of bad lines emits it again.
func TestEngine_ParserErrorSuppressedWithinContiguousRun(t *testing.T) {
	input := "" +
		"garbage one\n" +
		"garbage two\n" +
		"garbage three\n" +
		"1 A a B 10.00 100\n" +
		"garbage four\n" +
		"garbage five\n"

	quotes, diag, code := runInput(t, 100, input)

	assert.Equal(t, pricer.ParserError, code)
	assert.Equal(t, []string{"1 S 1000.00"}, quotes.lines)
	assert.Equal(t, []string{
		pricer.Message(pricer.ParserError),
		pricer.Message(pricer.ParserError),
	}, diag.lines)
}

func TestEngine_StopsOnContextCancellation(t *testing.T) {
	quotes := &lineSink{}
	diag := &lineSink{}
	eng := New(100, quotes, diag, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := eng.Run(ctx, wire.NewLineSource(bytes.NewReader(nil)))

	assert.Equal(t, pricer.Success, code)
}

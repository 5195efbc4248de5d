// Command pricer replays a limit-order event stream on stdin and prints
// the hypothetical execution price for a fixed share count to stdout,
// whenever it changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gopkg.in/tomb.v2"

	"github.com/fenrir-labs/pricer/internal/pricer/engine"
	"github.com/fenrir-labs/pricer/internal/pricer/logging"
	"github.com/fenrir-labs/pricer/internal/pricer/wire"
	"github.com/fenrir-labs/pricer/pricer"
)

func main() {
	os.Exit(int(run()))
}

func run() (code pricer.ExitCode) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "fatal:", r)
			code = pricer.OutOfMemory
		}
	}()

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pricer <targetShares>")
	}
	flag.Parse()

	target, ok := parseTarget(flag.Args())
	if !ok {
		flag.Usage()
		return pricer.InvalidCmdLine
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr)
	quotes := wire.NewWriter(os.Stdout)
	diag := wire.NewWriter(os.Stderr)
	defer quotes.Close()
	defer diag.Close()

	src := wire.NewLineSource(os.Stdin)
	eng := engine.New(target, quotes, diag, logger)

	// A single-goroutine tomb, not a worker pool: the run loop stays
	// sequential, but tying its lifetime to ctx still uses tomb's
	// supervise-and-wait shutdown pattern.
	var t tomb.Tomb
	t.Go(func() error {
		code = eng.Run(t.Context(ctx), src)
		return nil
	})
	<-t.Dead()

	return code
}

// sentinelTargetShares is the INT_MAX sentinel the original rejects
// alongside zero: original_source/src/Pricer.cpp guards construction
// with `(0 >= targetShares) || (targetShares == INT_MAX)`.
const sentinelTargetShares = 2147483647

func parseTarget(args []string) (uint64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	target, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || target == 0 || target >= sentinelTargetShares {
		return 0, false
	}
	return target, true
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sheikhrachel/go-gol/monitoring"
)

func main() {
	opts := newOptions()
	opts.Bind(flag.CommandLine)
	flag.Parse()

	// Handle Ctrl+C gracefully: the run stops between generations
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		monitoring.Logf("run failed: %v", err)
		os.Exit(1)
	}
}

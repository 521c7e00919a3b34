package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/payscout/internal/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := probe.NewCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

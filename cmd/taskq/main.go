// Command taskq manages prioritized task lists from the shell.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI().execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"switcherforgames.com/cli/internal/interfaces/cli"
	"switcherforgames.com/cli/internal/interfaces/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx, di.Factory(di.Options{}))
}

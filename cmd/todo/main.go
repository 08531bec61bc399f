package main

import (
	"context"
	"os"
	"os/signal"

	"todolist/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args[1:], cli.Options{})
	stop()

	os.Exit(code)
}

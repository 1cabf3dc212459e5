package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moodify/internal/cli"
)

const (
	exitSuccess     = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, os.Args[1:])
	os.Exit(exitCode(ctx, err))
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue cli.UsageError
	if errors.As(err, &ue) {
		fmt.Fprintln(os.Stderr, ue.Msg)
		return exitUsage
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Interrupted (Ctrl-C)")
		return exitInterrupted
	}
	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	return exitFailure
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"assetforge/internal/cli"
)

// main is the only place that consults the process working directory; it is
// captured once and passed down explicitly.
func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "assetforge:", err)
		os.Exit(cli.ExitInternalError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	result, execErr := cli.Run(ctx, os.Args[1:], cli.Options{
		WorkDir: wd,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	stop()
	if execErr != nil {
		fmt.Fprintln(os.Stderr, "assetforge:", execErr)
	}
	os.Exit(result.ExitCode)
}

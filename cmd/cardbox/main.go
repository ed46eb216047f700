// Package main is the entry point for cardbox.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardbox-tools/cardbox/internal/cli"
)

var (
	buildVersion string
	buildDate    string
)

func main() {
	if buildVersion != "" {
		cli.BuildVersion = buildVersion
	}
	if buildDate != "" {
		cli.BuildDate = buildDate
	}

	// Ctrl-C cancels an in-flight sync run instead of dumping a stack.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Init()

	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

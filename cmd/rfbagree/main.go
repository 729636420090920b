package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vijay-prabhu/rfb-agreement/internal/cli"
)

// Version information (set by build script)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersionInfo(Version, Commit, BuildTime)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

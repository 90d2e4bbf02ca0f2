package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/nugraph/internal/cli"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.New(os.Stderr, cli.LogWarn).RootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !nerrors.IsCancelled(err) {
		cli.PrintError(err)
	}
	cancel()
	os.Exit(nerrors.ExitCode(err))
}

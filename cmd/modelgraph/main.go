package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/internal/cli"
	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// Exit codes besides 0 and 1.
const (
	exitNoPath      = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", mgerrors.UserMessage(err))
	}
	os.Exit(exitCode(err))
}

// newRoot builds the root command with a --verbose flag that switches the
// logger to debug before any other start-up work runs.
func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if preRun == nil {
			return nil
		}
		return preRun(cmd, args)
	}
	return root
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case mgerrors.Is(err, mgerrors.ErrCodeNoPathFound):
		return exitNoPath
	default:
		return 1
	}
}

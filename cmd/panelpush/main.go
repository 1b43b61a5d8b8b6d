package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/internal/cli"
	pperrors "github.com/matzehuels/panelpush/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != 130 {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// the level is only known once flags are parsed
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps an error to a process exit status: 130 for interrupts
// (shell convention for SIGINT), 2 for rejected input, 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case strings.HasPrefix(string(pperrors.GetCode(err)), "INVALID_"):
		return 2
	default:
		return 1
	}
}

package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/pkg/notify"
	"github.com/matzehuels/panelpush/pkg/pipeline"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		opts     resolveOpts
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [scene]",
		Short: "Re-resolve a scene file every time it changes",
		Long: `Watch resolves a scene once and then again after every save. Bursts of
writes from editors are coalesced. A scene that fails to parse mid-edit is
reported and the previous report is kept until the next good save.`,
		Example: `  panelpush watch map.toml --table
  panelpush watch map.yaml -o map.placements.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], &opts, popts, debounce)
		},
	}

	opts.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", notify.DefaultDebounce, "quiet period before a change is resolved")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, w io.Writer, path string, opts *resolveOpts, popts pipeline.Options, debounce time.Duration) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	watcher, err := notify.NewFileWatcher(path, notify.WithDebounce(debounce), notify.WithLogger(logger))
	if err != nil {
		return err
	}
	defer watcher.Stop()
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	resolve := func() {
		res, err := runner.ResolveFile(ctx, path, popts)
		if err != nil {
			printError("%s: %v", path, err)
			return
		}
		if err := writeResults(w, []*pipeline.Result{res}, opts.output, popts.Format, opts.table); err != nil {
			printError("%v", err)
			return
		}
		printStats(res.Stats.Elements, res.Stats.Placed, res.Stats.Moved, res.CacheHit)
	}

	resolve()
	printInfo("Watching %s", StyleHighlight.Render(watcher.Path()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			logger.Debug("scene changed", "path", ev.Path, "op", ev.Op)
			resolve()
		}
	}
}

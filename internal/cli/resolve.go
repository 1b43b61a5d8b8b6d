package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/pkg/errors"
	"github.com/matzehuels/panelpush/pkg/pipeline"
	"github.com/matzehuels/panelpush/pkg/scene"
)

// resolveOpts holds the command-line flags shared by resolve and watch.
type resolveOpts struct {
	output      string        // output file (one scene) or directory (several)
	format      string        // report format: json, yaml, toml
	gap         float64       // clearance override
	width       float64       // viewport width override
	height      float64       // viewport height override
	transition  time.Duration // transition override
	zStep       int           // priority to z-index multiplier
	refresh     bool          // ignore cached results
	table       bool          // print a table instead of the encoded report
	concurrency int           // scenes resolved in parallel
	cache       cacheFlags
}

// register adds the layout flags to cmd.
func (o *resolveOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (one scene) or directory (several scenes)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "report format: json (default), yaml, toml")
	cmd.Flags().Float64Var(&o.gap, "gap", 0, "clearance between panels (overrides the scene)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "viewport width (overrides the scene)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "viewport height (overrides the scene)")
	cmd.Flags().DurationVar(&o.transition, "transition", 0, "transition duration (overrides the scene)")
	cmd.Flags().IntVar(&o.zStep, "z-step", 0, "z-index step per priority level")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&o.table, "table", false, "print a placement table instead of the report")
	o.cache.register(cmd)
}

// pipelineOptions converts flags to pipeline options. Gap and transition
// only override the scene when given explicitly.
func (o *resolveOpts) pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.Options{
		Width:   o.width,
		Height:  o.height,
		ZStep:   o.zStep,
		Refresh: o.refresh,
	}
	if cmd.Flags().Changed("gap") {
		gap := o.gap
		opts.Gap = &gap
	}
	if cmd.Flags().Changed("transition") {
		d := o.transition
		opts.Transition = &d
	}
	format, err := o.reportFormat()
	if err != nil {
		return opts, err
	}
	opts.Format = format
	return opts, opts.Validate()
}

// reportFormat picks the format from --format, then the output extension.
func (o *resolveOpts) reportFormat() (scene.Format, error) {
	if o.format != "" {
		return scene.ParseFormat(o.format)
	}
	if o.output != "" && filepath.Ext(o.output) != "" {
		if f, err := scene.FormatFromPath(o.output); err == nil {
			return f, nil
		}
	}
	return pipeline.DefaultFormat, nil
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [scene...]",
		Short: "Resolve panel overlaps in scene files",
		Long: `Resolve lays out every panel of a scene file and reports the offset, z-index
and transition each panel needs.

Scenes are TOML, YAML or JSON files. With one scene the report is written to
stdout or to --output; with several, --output names a directory and each
report is written next to the others as <scene>.placements.<format>.`,
		Example: `  panelpush resolve map.toml
  panelpush resolve map.toml --width 1024 --table
  panelpush resolve scenes/*.yaml -o reports/ -f yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), args, &opts, popts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", pipeline.DefaultConcurrency, "scenes resolved in parallel")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, w io.Writer, paths []string, opts *resolveOpts, popts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if len(paths) > 1 {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d scenes...", len(paths)))
		spinner.Start()
	}
	results, err := runner.ResolveFiles(ctx, paths, popts, opts.concurrency)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if err := writeResults(w, results, opts.output, popts.Format, opts.table); err != nil {
		return err
	}

	moved := 0
	for _, r := range results {
		moved += r.Stats.Moved
	}
	prog.done(fmt.Sprintf("Resolved %d %s, %d moved", len(results), plural(len(results), "scene"), moved))
	return nil
}

// writeResults writes reports to w, a file or a directory.
func writeResults(w io.Writer, results []*pipeline.Result, output string, format scene.Format, asTable bool) error {
	if asTable {
		for _, r := range results {
			fmt.Fprintln(w, StyleTitle.Render(r.Scene.Name()))
			fmt.Fprintln(w, placementsTable(r.Report))
		}
		if output == "" {
			return nil
		}
	}

	switch {
	case output == "":
		for _, r := range results {
			if _, err := w.Write(withNewline(r.Encoded)); err != nil {
				return err
			}
		}
		return nil
	case len(results) == 1 && !isDir(output):
		return writeReport(output, results[0].Encoded)
	default:
		if err := os.MkdirAll(output, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", output)
		}
		for _, r := range results {
			if err := writeReport(reportPath(output, r, format), r.Encoded); err != nil {
				return err
			}
		}
		return nil
	}
}

// reportPath names the report file for a result inside dir.
func reportPath(dir string, r *pipeline.Result, format scene.Format) string {
	base := r.Scene.Name()
	if r.Scene.Path != "" {
		base = strings.TrimSuffix(filepath.Base(r.Scene.Path), filepath.Ext(r.Scene.Path))
	}
	return filepath.Join(dir, base+".placements."+string(format))
}

func writeReport(path string, data []byte) error {
	if err := os.WriteFile(path, withNewline(data), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write report %s", path)
	}
	printFile(path)
	return nil
}

func isDir(path string) bool {
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func withNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b[:len(b):len(b)], '\n')
}

func plural(n int, word string) string {
	switch {
	case n == 1:
		return word
	case strings.HasSuffix(word, "y"):
		return strings.TrimSuffix(word, "y") + "ies"
	default:
		return word + "s"
	}
}

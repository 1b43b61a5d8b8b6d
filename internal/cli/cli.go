package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/pkg/buildinfo"
	"github.com/matzehuels/panelpush/pkg/cache"
	"github.com/matzehuels/panelpush/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "panelpush"

	// envRedisURL selects the shared Redis cache when set.
	envRedisURL = "PANELPUSH_REDIS_URL"

	// redisConnectTimeout bounds the initial Redis connection.
	redisConnectTimeout = 3 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Panelpush resolves overlaps between floating panels",
		Long: `Panelpush lays out floating panels inside a viewport. Panels are placed in
priority order and lower-priority panels are pushed out of the way of the
ones already placed, then kept inside the viewport edges.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend for commands that resolve scenes.
type cacheFlags struct {
	noCache  bool
	redisURL string
	scope    string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", os.Getenv(envRedisURL), "share results through Redis instead of the local cache (env "+envRedisURL+")")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "prefix for cache keys when several projects share a cache")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if flags.scope != "" {
		keyer = cache.NewScopedKeyer(nil, flags.scope+":")
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: flags.redisURL})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/panelpush/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

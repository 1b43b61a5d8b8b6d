package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panelpush/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL != "" {
				return c.clearRedis(cmd.Context(), redisURL)
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			return clearDir(dir)
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", os.Getenv(envRedisURL), "clear the Redis cache instead of the local one (env "+envRedisURL+")")
	return cmd
}

func clearDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	count, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	printSuccess("Cleared %d cached %s", count, plural(count, "entry"))
	printDetail("Directory: %s", dir)
	return nil
}

func (c *CLI) clearRedis(ctx context.Context, url string) error {
	connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	rc, err := cache.NewRedisCache(connectCtx, cache.RedisConfig{URL: url})
	if err != nil {
		return err
	}
	defer rc.Close()

	count, err := rc.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	printSuccess("Cleared %d cached %s", count, plural(count, "entry"))
	printDetail("Prefix: %s", cache.DefaultRedisPrefix)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

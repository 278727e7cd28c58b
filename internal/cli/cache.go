package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaceDashS/gpt-3d-visualizer/internal/config"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/cache"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the visualize response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached visualize responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if cfg.Cache.Backend == config.BackendNone {
				printInfo("Caching is disabled (cache.backend = none)")
				return nil
			}

			rc, err := cfg.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer rc.Close()

			clearer, ok := rc.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported,
					"the %s cache cannot be cleared from here; entries expire after %s",
					cfg.Cache.Backend, cfg.Cache.TTL.Duration)
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
			} else {
				printSuccess("Cleared %d cached entries", n)
			}
			if fc, ok := rc.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if cfg.Cache.Backend != config.BackendFile {
				return errors.New(errors.ErrCodeUnsupported,
					"cache.backend is %q; only the file backend has a directory", cfg.Cache.Backend)
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				d, err := config.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Println(dir)
			return nil
		},
	}
}

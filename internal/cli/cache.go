package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/pkg/cache"
	"github.com/matzehuels/patterndb/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stored tables",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [encoding...]",
		Short: "Remove stored tables",
		Long: `Remove stored tables from the configured cache.

With no arguments every table is removed. For the file backend this empties
the cache directory; other backends evict each registered encoding.`,
		ValidArgsFunction: completeEncodings,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			backend := cfg.Cache.Backend
			if len(args) == 0 && (backend == "" || backend == cache.BackendFile) {
				return clearCacheDir(cfg)
			}
			names := encodingNames(cfg, args)
			if len(args) == 0 {
				names = pipeline.EncodingNames()
			}
			return c.evictTables(cmd.Context(), cfg, names)
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
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheDir returns cache.dir from the config, or the XDG default
// (~/.cache/patterndb/).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.CacheDir()
}

func clearCacheDir(cfg config.Config) error {
	dir, err := cacheDir(cfg)
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	count, err := removeTables(dir)
	if err != nil {
		return err
	}
	if count == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Cleared %d stored tables", count)
	printDetail("Directory: %s", dir)
	return nil
}

// removeTables deletes every stored table file under dir and returns how
// many were removed. A missing directory counts as empty.
func removeTables(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if d.IsDir() || !strings.HasSuffix(path, cache.FileExt) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	return count, err
}

func (c *CLI) evictTables(ctx context.Context, cfg config.Config, names []string) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	for _, name := range names {
		if err := runner.Evict(ctx, name); err != nil {
			printWarning("%s: %v", name, err)
			continue
		}
		printSuccess("Evicted %s", name)
	}
	return nil
}

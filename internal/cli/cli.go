// Package cli implements the patterndb command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/pkg/buildinfo"
	"github.com/matzehuels/patterndb/pkg/cache"
	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// defaultScrambleLength is the number of moves in a generated scramble.
	defaultScrambleLength = 20
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

	configPath string
	noCache    bool
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
		Short: "patterndb builds and queries Rubik's cube pattern databases",
		Long: `patterndb builds pattern databases for the corners of the 3x3x3 cube by
breadth-first search from the solved state, stores them in a cache, and answers
lower-bound distance queries from the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/patterndb/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the table cache")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.encodingsCommand())
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.unrankCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the file named by --config, or the default location.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, cfg.Keyer(), c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	opts.Logger = c.Logger
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// buildOptions merges command flags over the config file's build section.
func buildOptions(cfg config.Config, workers int, refresh bool) pipeline.Options {
	opts := pipeline.Options{
		Workers: cfg.Build.Workers,
		Refresh: refresh,
		TTL:     cfg.Cache.TTL.Duration,
	}
	if workers != 0 {
		opts.Workers = workers
	}
	return opts
}

// encodingNames resolves the tables a command should use: explicit
// arguments first, then the config file, then pipeline.DefaultHeuristic.
func encodingNames(cfg config.Config, args []string) []string {
	var names []string
	for _, a := range args {
		for _, n := range strings.Split(a, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	if len(names) > 0 {
		return names
	}
	if len(cfg.Build.Encodings) > 0 {
		return cfg.Build.Encodings
	}
	return pipeline.DefaultHeuristic
}

// resolveState applies a move sequence, or a seeded scramble when moves is
// empty and scramble is positive, to the solved cube.
func resolveState(moves string, scramble int, seed uint64) (cube.State, []cube.Move, error) {
	var seq []cube.Move
	switch {
	case moves != "":
		parsed, err := cube.ParseMoves(moves)
		if err != nil {
			return cube.State{}, nil, err
		}
		seq = parsed
	case scramble > 0:
		seq = cube.Scramble(seed, scramble)
	}
	return cube.Solved().ApplyAll(seq), seq, nil
}

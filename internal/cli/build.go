package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	workers   int           // build parallelism, 0 uses config or GOMAXPROCS
	refresh   bool          // rebuild even when the cache has the table
	ttl       time.Duration // overrides cache.ttl from the config file
	histogram bool          // print the per-depth histogram
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{histogram: true}

	cmd := &cobra.Command{
		Use:   "build [encoding...]",
		Short: "Build pattern databases and store them in the cache",
		Long: `Build pattern databases by breadth-first search from the solved cube.

Each table is looked up in the cache first and only built on a miss. Use
--refresh to force a rebuild. With no arguments the encodings from the config
file are built, or corner-perm and corner-orient when none are configured.

Run 'patterndb encodings' to list the available encodings.`,
		Example: `  patterndb build corner-perm
  patterndb build corner-full --workers 16
  patterndb build --refresh`,
		ValidArgsFunction: completeEncodings,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), cfg, encodingNames(cfg, args), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "build workers (default: config or number of CPUs)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached tables and rebuild")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "cache lifetime of built tables (default: config, 0 keeps forever)")
	cmd.Flags().BoolVar(&opts.histogram, "histogram", opts.histogram, "print the distance histogram")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, cfg config.Config, names []string, opts buildOpts) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	po := buildOptions(cfg, opts.workers, opts.refresh)
	if opts.ttl != 0 {
		po.TTL = opts.ttl
	}

	prog := newProgress(loggerFromContext(ctx))
	for _, name := range names {
		res, err := c.loadWithSpinner(ctx, runner, name, po)
		if err != nil {
			return err
		}
		printSuccess("%s %s", StyleHighlight.Render(name), StyleDim.Render(res.Stats.String()))
		printStats(res.Stats, res.CacheHit)
		if res.BuildID != "" {
			printDetail("build %s", res.BuildID)
		}
		if opts.histogram {
			fmt.Println(histogramTable(res.Stats.Histogram))
		}
	}
	if len(names) > 1 {
		prog.done(fmt.Sprintf("Loaded %s", strings.Join(names, ", ")))
	}
	printNewline()
	printNextStep("Query a state", fmt.Sprintf("%s query \"R U R' U'\"", appName))
	return nil
}

// loadWithSpinner loads one table, showing the level being expanded unless
// debug logging already reports it.
func (c *CLI) loadWithSpinner(ctx context.Context, runner *pipeline.Runner, name string, opts pipeline.Options) (*pipeline.Result, error) {
	opts.Encoding = name
	if c.Logger.GetLevel() <= log.DebugLevel {
		return runner.Load(ctx, opts)
	}

	quiet := c.Logger.With()
	quiet.SetLevel(log.WarnLevel)
	opts.Logger = quiet

	spin := newSpinner(ctx, fmt.Sprintf("Loading %s", name))
	opts.OnLevel = func(depth uint8, count int) {
		spin.SetMessage("Building %s · depth %d · %d states", name, depth, count)
	}
	spin.Start()
	res, err := runner.Load(ctx, opts)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("%s: %v", name, err))
		return nil, err
	}
	spin.Stop()
	return res, nil
}

// completeEncodings offers registered encoding names for shell completion.
func completeEncodings(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, e := range pipeline.Encodings() {
		if strings.HasPrefix(e.Name, toComplete) {
			out = append(out, e.Name+"\t"+e.Description)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

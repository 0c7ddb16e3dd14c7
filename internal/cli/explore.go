package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/pdb"
	"github.com/matzehuels/patterndb/pkg/pipeline"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		tables  []string
		seed    uint64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Turn faces interactively and watch the heuristic",
		Long: `Open an interactive view of the cube's corners.

Each key press turns a face and the view shows the index and bound every table
gives for the new state, plus their maximum. Tables are loaded (or built)
before the view opens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), cfg, encodingNames(cfg, tables), seed, workers)
		},
	}

	cmd.Flags().StringSliceVarP(&tables, "table", "t", nil, "encodings to consult (default: config or corner-perm,corner-orient)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "first scramble seed")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "build workers for missing tables")
	_ = cmd.RegisterFlagCompletionFunc("table", completeEncodings)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, cfg config.Config, names []string, seed uint64, workers int) error {
	dbs, err := c.loadTables(ctx, cfg, names, workers)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewExploreModel(dbs, seed), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("explore: %w", err)
	}
	return ctx.Err()
}

// loadTables loads every named table through a cached runner.
func (c *CLI) loadTables(ctx context.Context, cfg config.Config, names []string, workers int) ([]*pdb.Database[cube.State], error) {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := buildOptions(cfg, workers, false)
	dbs := make([]*pdb.Database[cube.State], 0, len(names))
	for _, name := range names {
		var res *pipeline.Result
		if res, err = c.loadWithSpinner(ctx, runner, name, opts); err != nil {
			return nil, err
		}
		dbs = append(dbs, res.Database)
	}
	return dbs, nil
}

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/errors"
	"github.com/matzehuels/patterndb/pkg/pdb"
)

// queryOpts holds the command-line flags for the query command.
type queryOpts struct {
	tables   []string // encodings to consult
	scramble int      // random moves to apply when no sequence is given
	seed     uint64   // scramble seed
	workers  int
}

// queryCommand creates the query command for distance lookups.
func (c *CLI) queryCommand() *cobra.Command {
	opts := queryOpts{seed: 1}

	cmd := &cobra.Command{
		Use:   "query [moves]",
		Short: "Look up the distance of a cube state",
		Long: `Look up lower bounds on the distance of a cube state to solved.

The state is reached by applying a move sequence in Singmaster notation to the
solved cube, or a seeded random scramble with --scramble. Each table prints
its own bound; the heuristic line is their maximum.

Tables missing from the cache are built first.`,
		Example: `  patterndb query "R U R' U'"
  patterndb query --scramble 20 --seed 7
  patterndb query -t corner-full "F2 B2 L R'"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			moves := ""
			if len(args) == 1 {
				moves = args[0]
			}
			if err := errors.ValidateMoveSequence(moves); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runQuery(cmd.Context(), cfg, moves, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.tables, "table", "t", nil, "encodings to consult (default: config or corner-perm,corner-orient)")
	cmd.Flags().IntVar(&opts.scramble, "scramble", 0, "apply N random moves instead of a sequence")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "scramble seed")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "build workers for missing tables")
	_ = cmd.RegisterFlagCompletionFunc("table", completeEncodings)

	return cmd
}

func (c *CLI) runQuery(ctx context.Context, cfg config.Config, moves string, opts queryOpts) error {
	state, seq, err := resolveState(moves, opts.scramble, opts.seed)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMove, err, "parse moves")
	}

	tables, err := c.loadTables(ctx, cfg, encodingNames(cfg, opts.tables), opts.workers)
	if err != nil {
		return err
	}
	parts := make([]pdb.Heuristic[cube.State], len(tables))
	for i, t := range tables {
		parts[i] = t
	}

	if len(seq) > 0 {
		printKeyValue("moves", cube.FormatMoves(seq))
	} else {
		printKeyValue("moves", StyleDim.Render("(solved)"))
	}
	for _, t := range tables {
		printKeyValue(t.Name(), formatDistance(t.Distance(state)))
	}
	if len(parts) > 1 {
		printKeyValue("heuristic", formatDistance(pdb.Max(parts...).Distance(state)))
	}
	return nil
}

// formatDistance renders a lookup result for display.
func formatDistance(d uint8, err error) string {
	switch {
	case err == nil:
		return StyleNumber.Render(strconv.Itoa(int(d)))
	case stderrors.Is(err, pdb.ErrUnpopulatedIndex):
		return StyleWarning.Render("no bound")
	default:
		return StyleWarning.Render(strings.TrimPrefix(err.Error(), "pdb: "))
	}
}

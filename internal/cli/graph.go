package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/errors"
	"github.com/matzehuels/patterndb/pkg/pdb"
	"github.com/matzehuels/patterndb/pkg/pipeline"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"

	// maxGraphDepth keeps drawings readable; level 3 of corner-perm already
	// has thousands of nodes.
	maxGraphDepth = 4
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	encoding string
	depth    int
	format   string // dot or svg, inferred from output when empty
	output   string
}

// graphCommand creates the graph command for drawing the first search levels.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{encoding: pipeline.DefaultHeuristic[1], depth: 1}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the first levels of a table's search graph",
		Long: `Draw the projected move graph from the solved cube out to --depth levels.

Nodes are table indices labeled with their distance; edges are the moves that
reach the next level. The output is Graphviz DOT, or SVG when --format svg is
given or the output file ends in .svg.`,
		Example: `  patterndb graph --encoding corner-orient --depth 2 -o orient.svg
  patterndb graph -e corner-perm | dot -Tpng > perm.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.depth < 0 || opts.depth > maxGraphDepth {
				return errors.New(errors.ErrCodeInvalidInput, "depth must be between 0 and %d", maxGraphDepth)
			}
			if opts.output != "" {
				if err := errors.ValidatePath(opts.output); err != nil {
					return err
				}
			}
			format, err := graphFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return runGraph(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.encoding, "encoding", "e", opts.encoding, "encoding to draw")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", opts.depth, "levels to expand")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg (default: from output extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	_ = cmd.RegisterFlagCompletionFunc("encoding", completeEncodings)

	return cmd
}

func runGraph(ctx context.Context, opts graphOpts) error {
	enc, err := pipeline.LookupEncoding(opts.encoding)
	if err != nil {
		return err
	}
	dot, err := pdb.LevelDOT(enc.New(), pdb.Puzzle[cube.State](cube.Puzzle{}), opts.depth)
	if err != nil {
		return fmt.Errorf("graph %s: %w", opts.encoding, err)
	}

	data := []byte(dot)
	if opts.format == formatSVG {
		if data, err = pdb.RenderSVG(ctx, dot); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	printSuccess("Drew %s to depth %d", opts.encoding, opts.depth)
	printFile(opts.output)
	return nil
}

// graphFormat resolves the output format from the flag or the file extension.
func graphFormat(format, output string) (string, error) {
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), ".svg") {
			return formatSVG, nil
		}
		return formatDOT, nil
	}
	switch f := strings.ToLower(format); f {
	case formatDOT, formatSVG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", format)
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

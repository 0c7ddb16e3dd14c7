package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/pkg/pipeline"
)

// encodingsCommand lists the registered projections.
func (c *CLI) encodingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "encodings",
		Aliases: []string{"ls"},
		Short:   "List the available table encodings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(encodingsTable(pipeline.Encodings()))
			return nil
		},
	}
}

func encodingsTable(encs []pipeline.Encoding) string {
	rows := make([][]string, len(encs))
	for i, e := range encs {
		size := e.New().Size()
		rows[i] = []string{e.Name, strconv.FormatUint(uint64(size), 10), formatBytes(int(size)), e.Description}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Encoding", "Entries", "Memory", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

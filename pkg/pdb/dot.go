package pdb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// LevelDOT returns a Graphviz digraph of the projected move graph up to depth
// levels from the solved state. Nodes are table indices labeled with their
// distance; edges are labeled with the move that connects them. States whose
// projections collide are drawn as one node.
func LevelDOT[S any](proj Projection[S], p Puzzle[S], depth int) (string, error) {
	solved := p.Solved()
	root, err := indexOf(proj, solved)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", proj.Name())
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [fontsize=10];\n\n")

	dist := map[uint32]int{root: 0}
	fmt.Fprintf(&buf, "  n%d [label=\"%d\\nd=0\", fillcolor=\"#d4f4dd\"];\n", root, root)

	type edge struct{ from, to uint32 }
	edges := make(map[edge]bool)
	frontier := []S{solved}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []S
		for _, s := range frontier {
			from, err := indexOf(proj, s)
			if err != nil {
				return "", err
			}
			for m := 0; m < p.MoveCount(); m++ {
				t := p.Apply(s, m)
				to, err := indexOf(proj, t)
				if err != nil {
					return "", err
				}
				if _, ok := dist[to]; !ok {
					dist[to] = d + 1
					fmt.Fprintf(&buf, "  n%d [label=\"%d\\nd=%d\"];\n", to, to, d+1)
					next = append(next, t)
				}
				// Only edges that move one level outward.
				if dist[to] != d+1 || edges[edge{from, to}] {
					continue
				}
				edges[edge{from, to}] = true
				fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", from, to, p.MoveName(m))
			}
		}
		frontier = next
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// RenderSVG renders a DOT document to SVG with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

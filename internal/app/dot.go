package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/graphfile"
)

// printDot prints the graph in DOT. The nodes of the selected function and
// the nodes named with --highlight are filled.
func (a *App) printDot(ctx context.Context) error {
	res, err := a.build(ctx, a.config.Paths...)
	if err != nil {
		return err
	}

	var highlight []graph.NodeID
	if a.config.Function != "" {
		if highlight, err = graphfile.Highlight(res, a.config.Function); err != nil {
			return err
		}
	}
	for _, name := range a.config.Highlight {
		id, ok := res.Graph.Find(name)
		if !ok {
			return fmt.Errorf("cannot highlight unknown node %q", name)
		}
		highlight = append(highlight, id)
	}

	fmt.Fprint(a.outW, res.Graph.ToDot(highlight...))
	return nil
}

package graph

import (
	"fmt"
	"strings"
)

// ToDot renders the graph in Graphviz DOT format. Nodes are records with one
// port per socket; highlighted nodes are filled.
func (g *Graph) ToDot(highlight ...NodeID) string {
	marked := make(map[NodeID]bool, len(highlight))
	for _, id := range highlight {
		marked[id] = true
	}

	var sb strings.Builder
	sb.WriteString("digraph gridc {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=record, fontname=\"Helvetica\"];\n\n")

	for i, n := range g.nodes {
		id := NodeID(i)
		var ins, outs []string
		for j := 0; j < n.NumInputs(); j++ {
			d := n.Input(j)
			ins = append(ins, fmt.Sprintf("<i%d> %s: %s", j, escapeLabel(d.Name), escapeLabel(d.Type.Name())))
		}
		for j := 0; j < n.NumOutputs(); j++ {
			d := n.Output(j)
			outs = append(outs, fmt.Sprintf("<o%d> %s: %s", j, escapeLabel(d.Name), escapeLabel(d.Type.Name())))
		}

		label := fmt.Sprintf("{{%s}|%s\\n(%s)|{%s}}",
			strings.Join(ins, "|"), escapeLabel(n.Name), escapeLabel(n.Kind), strings.Join(outs, "|"))
		attrs := ""
		if marked[id] {
			attrs = `, style=filled, fillcolor="#ffd966"`
		}
		fmt.Fprintf(&sb, "  n%d [label=\"%s\"%s];\n", id, label, attrs)
	}

	if g.links.Len() > 0 {
		sb.WriteString("\n")
	}
	for _, l := range g.links.links {
		fmt.Fprintf(&sb, "  n%d:o%d -> n%d:i%d;\n", l.From.Node, l.From.Index, l.To.Node, l.To.Index)
	}

	sb.WriteString("}\n")
	return sb.String()
}

var labelEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func escapeLabel(s string) string { return labelEscaper.Replace(s) }

package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"strings"

	"github.com/loomery/loom/format"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given Selector tree.
func Dot(root *format.RootSelector, w io.Writer) error {
	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	n := 0
	gensym := func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}

	var emit func(s format.Selector) string
	emit = func(s format.Selector) string {
		id := gensym()
		switch v := s.(type) {
		case *format.SourceSelector:
			label := v.Name
			if 0 < len(v.Indexes) {
				ys, err := yaml.Marshal(v.Indexes)
				if err != nil {
					ys = []byte(err.Error())
				}
				label += `<FONT POINT-SIZE="8"><BR ALIGN="LEFT"/>` +
					strings.Replace(string(ys), "\n", `<BR ALIGN="LEFT"/>`, -1) +
					`</FONT>`
			}
			fmt.Fprintf(w, "  %s [fillcolor=\"#99ddc8\", label=<%s>]\n", id, label)
		case *format.GroupSelector:
			fmt.Fprintf(w, "  %s [fillcolor=\"#2d93ad\", label=<( )>]\n", id)
			for _, c := range v.Children {
				child := emit(c)
				fmt.Fprintf(w, "  %s -> %s\n", id, child)
			}
		}
		return id
	}

	rootId := gensym()
	fmt.Fprintf(w, "  %s [fillcolor=\"#52aa5e\", style=\"rounded,filled,bold\", label=<root>]\n", rootId)
	for _, c := range root.Children {
		child := emit(c)
		fmt.Fprintf(w, "  %s -> %s\n", rootId, child)
	}

	fmt.Fprintf(w, "}\n")

	return nil
}

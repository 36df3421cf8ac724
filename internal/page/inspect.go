package page

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zrbsprite/cell"
)

// Inspect prints the Phenotype tree under the document body, one node per
// line.
func (t *Tree) Inspect(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tID\tINHERITANCE\tCOMPONENTS\tUPDATED")
	t.walk(func(n *cell.Phenotype, depth int) {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%t\n",
			strings.Repeat("  ", depth), label(n), n.ID, inheritance(n), components(n), n.Meta.Updated)
	})
	return tw.Flush()
}

// Markdown returns the tree as a nested markdown list.
func (t *Tree) Markdown() string {
	var b strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", t.Title)
	}
	t.walk(func(n *cell.Phenotype, depth int) {
		fmt.Fprintf(&b, "%s- **%s** `%s`", strings.Repeat("  ", depth), label(n), n.ID)
		if len(n.Inheritance) > 0 {
			fmt.Fprintf(&b, " inherits `%s`", inheritance(n))
		}
		if n.Components != nil {
			fmt.Fprintf(&b, " components %s", components(n))
		}
		if n.Meta.Updated {
			b.WriteString(" *updated*")
		}
		b.WriteByte('\n')
	})
	return b.String()
}

func (t *Tree) walk(fn func(n *cell.Phenotype, depth int)) {
	for _, child := range t.Body.Children {
		child.Walk(func(n *cell.Phenotype, depth int) bool {
			fn(n, depth)
			return true
		})
	}
}

func label(n *cell.Phenotype) string {
	if n.Meta.Namespace != "" {
		return n.Type() + " (" + n.Meta.Namespace + ")"
	}
	return n.Type()
}

func inheritance(n *cell.Phenotype) string {
	if len(n.Inheritance) == 0 {
		return "-"
	}
	return strings.Join(n.Inheritance, ",")
}

func components(n *cell.Phenotype) string {
	if n.Components == nil {
		return "-"
	}
	return fmt.Sprint(len(n.Components))
}

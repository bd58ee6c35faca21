package grammar

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// Dump writes a human-readable listing of the grammar's productions, one
// per line, in the style gorgo's doc.go shows for Grammar.Dump().
// Productions are listed in ascending index order, which is the order
// they appear in the grammar file.
func (g *Grammar) Dump(w io.Writer) {
	indices := make([]int, len(g.Productions))
	for i := range g.Productions {
		indices[i] = i
	}
	slices.Sort(indices)
	for _, i := range indices {
		p := &g.Productions[i]
		fmt.Fprintf(w, "%d: [%s] ::= %s\n", p.Index, g.Symbols[p.LHS].ID, g.rhsString(p.RHS))
	}
}

func (g *Grammar) rhsString(rhs []int) string {
	s := "["
	for i, idx := range rhs {
		if i > 0 {
			s += " "
		}
		s += g.Symbols[idx].ID
	}
	return s + "]"
}

// SortedTerminals and SortedNonTerminals return symbol indices sorted
// ascending, used by table printers (package lr1) to produce deterministic
// column orderings for ACTION/GOTO dumps.
func (g *Grammar) SortedTerminals() []int {
	out := append([]int(nil), g.Terminals...)
	slices.Sort(out)
	return out
}

func (g *Grammar) SortedNonTerminals() []int {
	out := append([]int(nil), g.NonTerminals...)
	slices.Sort(out)
	return out
}

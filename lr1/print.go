package lr1

import (
	"fmt"
	"io"
)

// Dump writes the ACTION/GOTO tables in their literal tabular format:
// one row per state, ACTION columns keyed by terminal id with cells
// "sN"/"rN"/"acc"/blank, GOTO columns keyed by non-terminal id with
// cells "N"/blank.
func (t *Tables) Dump(w io.Writer) {
	terminals := t.g.SortedTerminals()
	nonTerminals := t.g.SortedNonTerminals()

	fmt.Fprintf(w, "state")
	for _, term := range terminals {
		fmt.Fprintf(w, "\t%s", t.g.Symbols[term].ID)
	}
	for _, nt := range nonTerminals {
		fmt.Fprintf(w, "\t%s", t.g.Symbols[nt].ID)
	}
	fmt.Fprintln(w)

	for _, s := range t.Collection.States() {
		fmt.Fprintf(w, "%d", s.ID)
		for _, term := range terminals {
			fmt.Fprintf(w, "\t%s", actionCell(t.Action(s.ID, term)))
		}
		for _, nt := range nonTerminals {
			if target, ok := t.Goto(s.ID, nt); ok {
				fmt.Fprintf(w, "\t%d", target)
			} else {
				fmt.Fprintf(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}
}

func actionCell(a Action) string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("s%d", a.Target)
	case ActionReduce:
		return fmt.Sprintf("r%d", a.Target)
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}

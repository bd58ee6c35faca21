package lr1

import (
	"fmt"

	"clc/grammar"
)

// DottedItem is (production index, dot position). Dot position
// ranges over [0, len(RHS)], except for ε-productions, where the dot is
// always taken to be past the ε symbol (position 1) — see initialItem.
type DottedItem struct {
	Prod int
	Dot  int
}

// LR1Item pairs a dotted item with a lookahead terminal.
type LR1Item struct {
	Item      DottedItem
	Lookahead int
}

// initialItem builds the dot-at-zero item for a production, observing
// the ε-production special case: the dot is always taken past ε in
// CLOSURE so that no transition edge is introduced on ε.
func initialItem(g *grammar.Grammar, prodIdx int) DottedItem {
	p := &g.Productions[prodIdx]
	if p.IsEpsilon(g) {
		return DottedItem{Prod: prodIdx, Dot: 1}
	}
	return DottedItem{Prod: prodIdx, Dot: 0}
}

// AtEnd reports whether the dot has reached the end of the production's RHS.
func (it DottedItem) AtEnd(g *grammar.Grammar) bool {
	return it.Dot >= len(g.Productions[it.Prod].RHS)
}

// PeekSymbol returns the symbol index immediately after the dot, and false
// if the dot is at the end of the production.
func (it DottedItem) PeekSymbol(g *grammar.Grammar) (int, bool) {
	rhs := g.Productions[it.Prod].RHS
	if it.Dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.Dot], true
}

// Advance returns the item with the dot moved one position to the right.
func (it DottedItem) Advance() DottedItem {
	return DottedItem{Prod: it.Prod, Dot: it.Dot + 1}
}

// Prefix returns the symbols the dot has already passed over.
func (it DottedItem) Prefix(g *grammar.Grammar) []int {
	rhs := g.Productions[it.Prod].RHS
	if it.Dot > len(rhs) {
		return rhs
	}
	return rhs[:it.Dot]
}

// Suffix returns the symbols still to the right of the dot.
func (it DottedItem) Suffix(g *grammar.Grammar) []int {
	rhs := g.Productions[it.Prod].RHS
	if it.Dot >= len(rhs) {
		return nil
	}
	return rhs[it.Dot:]
}

// String renders an item as "[A -> α · β, a]" for tracing.
func (li LR1Item) String(g *grammar.Grammar) string {
	p := &g.Productions[li.Item.Prod]
	pre := symbolsString(g, li.Item.Prefix(g))
	post := symbolsString(g, li.Item.Suffix(g))
	return fmt.Sprintf("[%s -> %s . %s, %s]", g.Symbols[p.LHS].ID, pre, post, g.Symbols[li.Lookahead].ID)
}

func symbolsString(g *grammar.Grammar, syms []int) string {
	s := ""
	for i, idx := range syms {
		if i > 0 {
			s += " "
		}
		s += g.Symbols[idx].ID
	}
	return s
}

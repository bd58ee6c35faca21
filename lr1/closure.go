package lr1

import (
	"clc/grammar"
	"clc/lr1/itemset"
)

// closure computes CLOSURE(I) for a seed set of LR(1) items: for every
// item [A -> α · B β, a] in I with B a non-terminal, for every
// production B -> γ, add [B -> · γ, b] for every terminal b in
// FIRST(β a) \ {ε}. The ε-production special case (never synthesize a
// dot-before-ε item) is handled by initialItem.
func closure(g *grammar.Grammar, seed *itemset.Set) *itemset.Set {
	C := seed.Copy()
	C.IterateOnce()
	for C.Next() {
		li := C.Item().(LR1Item)
		B, ok := li.Item.PeekSymbol(g)
		if !ok || !g.IsNonTerminal(B) {
			continue
		}
		beta := li.Item.Suffix(g)[1:] // symbols strictly after B
		seq := make([]int, 0, len(beta)+1)
		seq = append(seq, beta...)
		seq = append(seq, li.Lookahead)
		lookaheads := g.FirstOfSequence(seq)
		for _, prod := range g.FindNonTermRules(B) {
			for _, b := range lookaheads.Slice() {
				if b == g.EpsilonIndex() {
					continue
				}
				C.Add(LR1Item{Item: initialItem(g, prod.Index), Lookahead: b})
			}
		}
	}
	return C
}

// gotoSet computes the raw (un-closed) GOTO(I, X): every item with X
// immediately after the dot, advanced one position.
func gotoSet(g *grammar.Grammar, I *itemset.Set, X int) *itemset.Set {
	out := itemset.New()
	for _, v := range I.Values() {
		li := v.(LR1Item)
		sym, ok := li.Item.PeekSymbol(g)
		if ok && sym == X {
			out.Add(LR1Item{Item: li.Item.Advance(), Lookahead: li.Lookahead})
		}
	}
	return out
}

// gotoClosure computes GOTO(I, X) = CLOSURE(gotoSet(I, X)). It returns
// an empty set, uncommitted to closure, when no item advances
// on X — callers treat an empty result as "no transition".
func gotoClosure(g *grammar.Grammar, I *itemset.Set, X int) *itemset.Set {
	raw := gotoSet(g, I, X)
	if raw.Empty() {
		return raw
	}
	return closure(g, raw)
}

// seedCollection builds CLOSURE({[S -> · Program, #]}), the canonical
// collection's start state.
func seedCollection(g *grammar.Grammar) *itemset.Set {
	seed := itemset.New()
	seed.Add(LR1Item{Item: initialItem(g, g.StartProduction), Lookahead: g.EndMarkerIndex()})
	return closure(g, seed)
}

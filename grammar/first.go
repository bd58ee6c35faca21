package grammar

// This file implements component 2, the FIRST-set engine,
// grounded on grammatical_analysis.hpp's getFirstOfTerminal /
// getFirstOfNonterminal / getFirstOfProduction trio, translated into a
// fixed-point loop over Set (see symbol.go) instead of std::set<int>.

// computeFirstSets fills in Symbol.First for every symbol in the grammar.
// Terminals (and the end marker) get the singleton {self}; epsilon gets
// {epsilon}; non-terminals are computed by fixed-point iteration over all
// productions until no set grows.
func (g *Grammar) computeFirstSets() {
	for _, idx := range g.Terminals {
		g.Symbols[idx].First = NewSet(idx)
	}
	g.Symbols[g.epsilonIdx].First = NewSet(g.epsilonIdx)

	for _, idx := range g.NonTerminals {
		g.Symbols[idx].First = Set{}
	}

	for {
		changed := false
		for _, nt := range g.NonTerminals {
			for i := range g.Productions {
				p := &g.Productions[i]
				if p.LHS != nt {
					continue
				}
				if g.extendFirstOfNonTerminal(nt, p.RHS) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	tracer().Debugf("FIRST sets computed for %d non-terminals", len(g.NonTerminals))
}

// extendFirstOfNonTerminal merges the FIRST set contributed by a single
// production's RHS into FIRST(nonTerm), and reports whether it grew.
func (g *Grammar) extendFirstOfNonTerminal(nonTerm int, rhs []int) bool {
	dest := g.Symbols[nonTerm].First
	changed := false

	first := rhs[0]
	if g.IsTerminal(first) || g.IsEpsilon(first) {
		if dest.Add(first) {
			changed = true
		}
		return changed
	}

	deriveEpsilon := true
	for _, sym := range rhs {
		if g.IsTerminal(sym) {
			if dest.UnionExceptEpsilon(g.Symbols[sym].First, g.epsilonIdx) {
				changed = true
			}
			deriveEpsilon = false
			break
		}
		if dest.UnionExceptEpsilon(g.Symbols[sym].First, g.epsilonIdx) {
			changed = true
		}
		if !g.Symbols[sym].First.Has(g.epsilonIdx) {
			deriveEpsilon = false
			break
		}
	}
	if deriveEpsilon {
		if dest.Add(g.epsilonIdx) {
			changed = true
		}
	}
	return changed
}

// FirstOfSequence computes FIRST(beta) for an arbitrary right-hand side
// (or suffix thereof), following the same concatenation rule used within
// CLOSURE for FIRST(β a). FIRST of the empty sequence is {epsilon}.
func (g *Grammar) FirstOfSequence(seq []int) Set {
	if len(seq) == 0 {
		return NewSet(g.epsilonIdx)
	}
	first := seq[0]
	if g.IsTerminal(first) || g.IsEpsilon(first) {
		return NewSet(first)
	}

	result := Set{}
	deriveEpsilon := true
	for _, sym := range seq {
		if g.IsTerminal(sym) {
			result.UnionExceptEpsilon(g.Symbols[sym].First, g.epsilonIdx)
			deriveEpsilon = false
			break
		}
		result.UnionExceptEpsilon(g.Symbols[sym].First, g.epsilonIdx)
		if !g.Symbols[sym].First.Has(g.epsilonIdx) {
			deriveEpsilon = false
			break
		}
	}
	if deriveEpsilon {
		result.Add(g.epsilonIdx)
	}
	return result
}

// Package grammar loads a declarative grammar file into
// a symbol registry and a list of productions, and computes FIRST sets for
// every symbol.
//
// The loader is grounded on original_source/grammatical_analysis.hpp's
// Grammar class: best-effort symbol registration while scanning lines,
// one pre-registered epsilon and end-marker, and a fixed-point FIRST-set
// computation performed immediately after loading.
package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'clc.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("clc.grammar")
}

// Grammar holds the symbol registry and production list built from a
// grammar file, plus the derived FIRST sets and the index of the
// augmented start production (S -> Program).
type Grammar struct {
	Symbols         []Symbol
	byID            map[string]int
	Terminals       []int // symbol indices, registration order
	NonTerminals    []int // symbol indices, registration order
	Productions     []Production
	StartProduction int // index into Productions, or -1 if never seen

	epsilonIdx   int
	endMarkerIdx int
}

// Load reads a grammar file and returns a fully analysed Grammar (symbols
// registered, productions recorded, FIRST sets computed). Load is the
// sole entry point component 1 (grammar loader) and component 2
// (FIRST-set engine) expose to callers.
func Load(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: cannot open %q: %w", path, err)
	}
	defer f.Close()
	g, err := loadFrom(f)
	if err != nil {
		return nil, err
	}
	g.computeFirstSets()
	return g, nil
}

func newGrammar() *Grammar {
	g := &Grammar{
		byID:            make(map[string]int),
		StartProduction: -1,
	}
	// '#' is the unique EndMarker, '@' is the unique epsilon; both are
	// pre-registered before any line of the grammar file is read, matching
	// Grammar::readProductions in the reference implementation.
	g.endMarkerIdx = g.register(EndMarkerID, EndMarker)
	g.epsilonIdx = g.register(EpsilonID, Epsilon)
	return g
}

// register inserts id with the given kind if not already present, and
// returns its index. The "each id appears at most once" invariant
// is enforced here: a second registration of the same id is
// a no-op that returns the existing index, regardless of the kind passed.
func (g *Grammar) register(id string, kind Kind) int {
	if idx, ok := g.byID[id]; ok {
		return idx
	}
	idx := len(g.Symbols)
	g.Symbols = append(g.Symbols, Symbol{Index: idx, ID: id, Kind: kind})
	g.byID[id] = idx
	switch kind {
	case Terminal, EndMarker:
		g.Terminals = append(g.Terminals, idx)
	case NonTerminal:
		g.NonTerminals = append(g.NonTerminals, idx)
	}
	return idx
}

// SymbolByID looks up a symbol index by its textual id, reporting whether
// it was found.
func (g *Grammar) SymbolByID(id string) (int, bool) {
	idx, ok := g.byID[id]
	return idx, ok
}

func (g *Grammar) EpsilonIndex() int   { return g.epsilonIdx }
func (g *Grammar) EndMarkerIndex() int { return g.endMarkerIdx }

func (g *Grammar) IsTerminal(idx int) bool {
	return idx >= 0 && idx < len(g.Symbols) && g.Symbols[idx].IsTerminal()
}

func (g *Grammar) IsNonTerminal(idx int) bool {
	return idx >= 0 && idx < len(g.Symbols) && g.Symbols[idx].IsNonTerminal()
}

func (g *Grammar) IsEpsilon(idx int) bool {
	return idx == g.epsilonIdx
}

func (g *Grammar) IsEndMarker(idx int) bool {
	return idx == g.endMarkerIdx
}

func loadFrom(r io.Reader) (*Grammar, error) {
	g := newGrammar()
	scan := bufio.NewScanner(r)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := g.loadLine(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("grammar: read error: %w", err)
	}
	if g.StartProduction < 0 {
		return nil, fmt.Errorf("grammar: no production for augmented start symbol %q", ExtendStart)
	}
	tracer().Infof("loaded grammar: %d symbols, %d productions", len(g.Symbols), len(g.Productions))
	return g, nil
}

func (g *Grammar) loadLine(line string, lineNo int) error {
	lhs, rhs, ok := strings.Cut(line, "->")
	if !ok {
		return fmt.Errorf("grammar: line %d: malformed production, missing '->': %q", lineNo, line)
	}
	lhs = strings.TrimSpace(lhs)
	if lhs == "" {
		return fmt.Errorf("grammar: line %d: empty left-hand side", lineNo)
	}
	alts := splitTrim(rhs, "|")
	if len(alts) == 0 {
		return fmt.Errorf("grammar: line %d: empty right-hand side", lineNo)
	}

	if lhs == "%token" {
		for _, name := range alts {
			g.register(name, Terminal)
		}
		return nil
	}

	leftIdx, known := g.byID[lhs]
	if !known {
		leftIdx = g.register(lhs, NonTerminal)
	} else if g.Symbols[leftIdx].Kind != NonTerminal {
		return fmt.Errorf("grammar: line %d: %q used as both a terminal and a left-hand side", lineNo, lhs)
	}

	for _, alt := range alts {
		units := strings.Fields(alt)
		if len(units) == 0 {
			return fmt.Errorf("grammar: line %d: empty alternative in production for %q", lineNo, lhs)
		}
		rhsIdx := make([]int, 0, len(units))
		for _, u := range units {
			idx, known := g.byID[u]
			if !known {
				// Any symbol not seen before on an RHS is, by construction,
				// a non-terminal whose defining line hasn't been reached
				// yet (grammatical_analysis.hpp's "best-effort kinds" rule).
				idx = g.register(u, NonTerminal)
			}
			rhsIdx = append(rhsIdx, idx)
		}
		p := Production{Index: len(g.Productions), LHS: leftIdx, RHS: rhsIdx}
		g.Productions = append(g.Productions, p)
		if lhs == ExtendStart {
			g.StartProduction = p.Index
		}
	}
	return nil
}

// splitTrim splits s on sep, trims each piece, and drops empty pieces —
// the Go equivalent of util.hpp's split()+trim() combination.
func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FindNonTermRules returns the productions whose LHS is nonTerm.
func (g *Grammar) FindNonTermRules(nonTerm int) []*Production {
	var out []*Production
	for i := range g.Productions {
		if g.Productions[i].LHS == nonTerm {
			out = append(out, &g.Productions[i])
		}
	}
	return out
}

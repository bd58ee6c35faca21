package grammar

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const miniGrammar = `
%token -> a | b | d
S -> Program
Program -> A a
A -> B D
B -> b
B -> @
D -> d
D -> @
`

func load(t *testing.T, src string) *Grammar {
	teardown := gotestingadapter.QuickConfig(t, "clc.grammar")
	defer teardown()
	g, err := loadFrom(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	g.computeFirstSets()
	return g
}

func TestLoadRegistersReservedSymbols(t *testing.T) {
	g := load(t, miniGrammar)
	if idx, ok := g.SymbolByID(EndMarkerID); !ok || !g.IsEndMarker(idx) {
		t.Fatalf("expected %q to be registered as the end marker", EndMarkerID)
	}
	if idx, ok := g.SymbolByID(EpsilonID); !ok || !g.IsEpsilon(idx) {
		t.Fatalf("expected %q to be registered as epsilon", EpsilonID)
	}
}

func TestLoadFindsStartProduction(t *testing.T) {
	g := load(t, miniGrammar)
	if g.StartProduction < 0 {
		t.Fatalf("expected a start production to be found")
	}
	p := g.Productions[g.StartProduction]
	if g.Symbols[p.LHS].ID != ExtendStart {
		t.Fatalf("start production LHS = %q, want %q", g.Symbols[p.LHS].ID, ExtendStart)
	}
}

func TestFirstOfTerminalIsSingleton(t *testing.T) {
	g := load(t, miniGrammar)
	aIdx, _ := g.SymbolByID("a")
	first := g.Symbols[aIdx].First
	if len(first) != 1 || !first.Has(aIdx) {
		t.Fatalf("FIRST(a) = %v, want {a}", first)
	}
}

func TestFirstPropagatesThroughEpsilonDerivingNonTerminals(t *testing.T) {
	g := load(t, miniGrammar)
	// A -> B D, and both B and D can derive epsilon, and B can derive 'b',
	// D can derive 'd'; since every symbol of A's only right-hand side can
	// derive epsilon, A derives epsilon too, so FIRST(A) is {b, d, epsilon}.
	aNT, _ := g.SymbolByID("A")
	bTok, _ := g.SymbolByID("b")
	dTok, _ := g.SymbolByID("d")
	first := g.Symbols[aNT].First
	if !first.Has(bTok) || !first.Has(dTok) {
		t.Fatalf("FIRST(A) = %v, want to contain b and d", first)
	}
	if !first.Has(g.EpsilonIndex()) {
		t.Fatalf("FIRST(A) = %v, should contain epsilon", first)
	}
}

func TestFirstOfSequenceEmptyIsEpsilon(t *testing.T) {
	g := load(t, miniGrammar)
	seq := g.FirstOfSequence(nil)
	if !seq.Has(g.EpsilonIndex()) || len(seq) != 1 {
		t.Fatalf("FIRST(empty) = %v, want {epsilon}", seq)
	}
}

func TestMalformedLineIsFatalWithLineNumber(t *testing.T) {
	_, err := loadFrom(strings.NewReader("this has no arrow\n"))
	if err == nil {
		t.Fatalf("expected an error for a malformed grammar line")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("error %q does not mention the offending line", err.Error())
	}
}

func TestMissingStartProductionIsFatal(t *testing.T) {
	_, err := loadFrom(strings.NewReader("Program -> a\n%token -> a\n"))
	if err == nil {
		t.Fatalf("expected an error when S -> Program is never declared")
	}
}

package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"clc"
	"clc/grammar"
	"clc/lr1"
)

const exprGrammar = `
%token -> plus | id
S -> Program
Program -> E
E -> E plus T
E -> T
T -> id
`

// recordingAnalyzer records every shift/reduce it's driven through, to
// verify the parser calls it in the expected shift/reduce order.
type recordingAnalyzer struct {
	shifts  []string
	reduces []int
}

func (r *recordingAnalyzer) Shift(tok clc.Token) {
	r.shifts = append(r.shifts, tok.Lexeme())
}

func (r *recordingAnalyzer) Reduce(prod *grammar.Production) error {
	r.reduces = append(r.reduces, prod.Index)
	return nil
}

type simpleToken struct {
	symbolID string
	lexeme   string
	line     int
}

func (t simpleToken) Kind() clc.TokKind { return 0 }
func (t simpleToken) Lexeme() string    { return t.lexeme }
func (t simpleToken) Line() int         { return t.line }
func (t simpleToken) SymbolID() string  { return t.symbolID }

func loadGrammar(t *testing.T, src string) *grammar.Grammar {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.txt")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	g, err := grammar.Load(path)
	if err != nil {
		t.Fatalf("grammar.Load: %v", err)
	}
	return g
}

func buildTables(t *testing.T, g *grammar.Grammar) *lr1.Tables {
	coll, err := lr1.Build(g)
	if err != nil {
		t.Fatalf("lr1.Build: %v", err)
	}
	tables, err := lr1.BuildTables(g, coll)
	if err != nil {
		t.Fatalf("lr1.BuildTables: %v", err)
	}
	return tables
}

func TestAcceptsIdPlusId(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clc.parser")
	defer teardown()
	g := loadGrammar(t, exprGrammar)
	tables := buildTables(t, g)
	analyzer := &recordingAnalyzer{}
	p := New(g, tables, analyzer, &bytes.Buffer{})

	tokens := []clc.Token{
		simpleToken{symbolID: "id", lexeme: "a", line: 1},
		simpleToken{symbolID: "plus", lexeme: "+", line: 1},
		simpleToken{symbolID: "id", lexeme: "b", line: 1},
		simpleToken{symbolID: "#", lexeme: "#", line: 0},
	}
	accepted, err := p.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !accepted {
		t.Fatalf("expected the input to be accepted")
	}
	if len(analyzer.shifts) != 3 {
		t.Fatalf("shifts = %v, want 3 (a, +, b)", analyzer.shifts)
	}
	if len(analyzer.reduces) == 0 {
		t.Fatalf("expected at least one reduction")
	}
	if p.SyntaxErrors != 0 {
		t.Fatalf("SyntaxErrors = %d, want 0", p.SyntaxErrors)
	}
}

func TestPanicModeRecoversFromAnUnexpectedToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clc.parser")
	defer teardown()
	g := loadGrammar(t, exprGrammar)
	tables := buildTables(t, g)
	analyzer := &recordingAnalyzer{}
	p := New(g, tables, analyzer, &bytes.Buffer{})

	// Two identifiers back to back is a syntax error (an id can't follow
	// a completed T): panic-mode recovery should pop back to state 0 and
	// let the second id start a fresh, successful parse rather than
	// aborting outright.
	tokens := []clc.Token{
		simpleToken{symbolID: "id", lexeme: "a", line: 1},
		simpleToken{symbolID: "id", lexeme: "b", line: 1},
		simpleToken{symbolID: "#", lexeme: "#", line: 0},
	}
	_, err := p.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.SyntaxErrors != 1 {
		t.Fatalf("SyntaxErrors = %d, want 1", p.SyntaxErrors)
	}
}

package semantics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"clc"
	"clc/grammar"
)

// miniGrammar carries only the productions scenario 1
// actually reduces through; it is loaded with grammar.Load so that
// Analyzer can resolve symbol ids the same way it would from a real
// grammar file, without needing a full, conflict-free LR(1) grammar for
// the whole language (lr1.Build is never exercised by this test).
const miniGrammar = `
%token -> int | <ID> | ( | ) | { | } | return | <INT> | ; | =
S -> Program
Program -> ExtDefList
ExtDefList -> ExtDef ExtDefList | @
ExtDef -> Specifier FunDec Block ExitFunTable_m
Specifier -> int
FunDec -> <ID> CreateFunTable_m ( VarList )
CreateFunTable_m -> @
VarList -> @
Block -> Block_m { DefList StmtList }
Block_m -> @
DefList -> @
StmtList -> Stmt StmtList | @
Stmt -> return Exp ;
Exp -> <INT>
ExitFunTable_m -> @
Dec -> <ID>
`

func loadMiniGrammar(t *testing.T) *grammar.Grammar {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.txt")
	if err := os.WriteFile(path, []byte(miniGrammar), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	g, err := grammar.Load(path)
	if err != nil {
		t.Fatalf("grammar.Load: %v", err)
	}
	return g
}

// findProd returns the production matching lhs -> rhs..., panicking (via
// t.Fatalf) if none or more than one matches.
func findProd(t *testing.T, g *grammar.Grammar, lhs string, rhs ...string) *grammar.Production {
	for i := range g.Productions {
		p := &g.Productions[i]
		if g.Symbols[p.LHS].ID != lhs || len(p.RHS) != len(rhs) {
			continue
		}
		match := true
		for j, sym := range p.RHS {
			if g.Symbols[sym].ID != rhs[j] {
				match = false
				break
			}
		}
		if match {
			return p
		}
	}
	t.Fatalf("no production %s -> %v in grammar", lhs, rhs)
	return nil
}

func tok(symbolID, lexeme string, line int) clc.Token {
	return miniToken{symbolID: symbolID, lexeme: lexeme, line: line}
}

type miniToken struct {
	symbolID string
	lexeme   string
	line     int
}

func (t miniToken) Kind() clc.TokKind { return 0 }
func (t miniToken) Lexeme() string    { return t.lexeme }
func (t miniToken) Line() int         { return t.line }
func (t miniToken) SymbolID() string  { return t.symbolID }

// TestIntMainReturnZero drives the Analyzer through the exact
// shift/reduce sequence a canonical LR(1) parse of
// "int main ( ) { return 0 ; }" produces, and checks the emitted
// quadruples against the expected end-to-end main-with-return scenario.
func TestIntMainReturnZero(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clc.semantics")
	defer teardown()
	g := loadMiniGrammar(t)
	a := NewAnalyzer(g)

	a.Shift(tok("int", "int", 1))
	a.Reduce(findProd(t, g, "Specifier", "int"))

	a.Shift(tok("<ID>", "main", 1))
	a.Reduce(findProd(t, g, "CreateFunTable_m", "@"))

	a.Shift(tok("(", "(", 1))
	a.Reduce(findProd(t, g, "VarList", "@"))

	a.Shift(tok(")", ")", 1))
	a.Reduce(findProd(t, g, "FunDec", "<ID>", "CreateFunTable_m", "(", "VarList", ")"))

	a.Reduce(findProd(t, g, "Block_m", "@"))
	a.Shift(tok("{", "{", 1))
	a.Reduce(findProd(t, g, "DefList", "@"))

	a.Shift(tok("return", "return", 1))
	a.Shift(tok("<INT>", "0", 1))
	a.Reduce(findProd(t, g, "Exp", "<INT>"))
	a.Shift(tok(";", ";", 1))
	a.Reduce(findProd(t, g, "Stmt", "return", "Exp", ";"))

	a.Reduce(findProd(t, g, "StmtList", "@"))
	a.Reduce(findProd(t, g, "StmtList", "Stmt", "StmtList"))

	a.Shift(tok("}", "}", 1))
	a.Reduce(findProd(t, g, "Block", "Block_m", "{", "DefList", "StmtList", "}"))
	a.Reduce(findProd(t, g, "ExitFunTable_m", "@"))
	a.Reduce(findProd(t, g, "ExtDef", "Specifier", "FunDec", "Block", "ExitFunTable_m"))

	a.Reduce(findProd(t, g, "ExtDefList", "@"))
	a.Reduce(findProd(t, g, "ExtDefList", "ExtDef", "ExtDefList"))
	a.Reduce(findProd(t, g, "Program", "ExtDefList"))

	if len(a.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", a.Diagnostics)
	}
	if a.MainLabel() != 1 {
		t.Fatalf("MainLabel() = %d, want 1", a.MainLabel())
	}
	if !a.BackpatchResolved() {
		t.Fatalf("expected the backpatch stack to be empty at accept")
	}

	quads := a.Quads()
	want := []string{
		"1 : main, -, -, -",
		"2 : :=, 0, -, main_ret_val",
		"3 : return, -, -, main",
	}
	if len(quads) != len(want) {
		t.Fatalf("quads = %v, want %v", quads, want)
	}
	for i, q := range quads {
		if q.String() != want[i] {
			t.Fatalf("quads[%d] = %q, want %q", i, q.String(), want[i])
		}
	}
}

// TestFunctionRedefinitionIsRecordedAndParsingContinues exercises the
// redefinition-is-a-diagnostic-not-an-abort policy: a
// duplicate function name should not desynchronize the semantic stack.
func TestFunctionRedefinitionIsRecordedAndParsingContinues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clc.semantics")
	defer teardown()
	g := loadMiniGrammar(t)
	a := NewAnalyzer(g)

	declareFun := func(name string) {
		a.Shift(tok("int", "int", 1))
		a.Reduce(findProd(t, g, "Specifier", "int"))
		a.Shift(tok("<ID>", name, 1))
		a.Reduce(findProd(t, g, "CreateFunTable_m", "@"))
		a.Shift(tok("(", "(", 1))
		a.Reduce(findProd(t, g, "VarList", "@"))
		a.Shift(tok(")", ")", 1))
		a.Reduce(findProd(t, g, "FunDec", "<ID>", "CreateFunTable_m", "(", "VarList", ")"))
	}

	declareFun("f")
	declareFun("f")

	if len(a.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %v, want exactly one redefinition", a.Diagnostics)
	}
	if a.Diagnostics[0].Kind != Redefinition {
		t.Fatalf("Diagnostics[0].Kind = %v, want Redefinition", a.Diagnostics[0].Kind)
	}
}

// TestDecWithInitializerEmitsAssignment exercises the fixed `Dec -> <ID>
// = Exp` case: the initializer
// value must reach an assignment quadruple, not be silently dropped.
func TestDecWithInitializerEmitsAssignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "clc.semantics")
	defer teardown()
	g := loadMiniGrammar(t)
	a := NewAnalyzer(g)

	// Enter a function scope so Dec has somewhere to declare into.
	a.Shift(tok("int", "int", 1))
	a.Reduce(findProd(t, g, "Specifier", "int"))
	a.Shift(tok("<ID>", "f", 1))
	a.Reduce(findProd(t, g, "CreateFunTable_m", "@"))

	// Simulate "int a = 0" : Specifier <ID> = Exp, using synthetic
	// productions built directly (Dec -> <ID> = Exp isn't in miniGrammar).
	a.Shift(tok("int", "int", 2))
	a.Reduce(findProd(t, g, "Specifier", "int"))
	a.Shift(tok("<ID>", "a", 2))
	a.Shift(tok("=", "=", 2))
	a.Shift(tok("<INT>", "0", 2))
	a.Reduce(findProd(t, g, "Exp", "<INT>"))

	idSym, _ := g.SymbolByID("<ID>")
	eqSym, _ := g.SymbolByID("=")
	expSym, _ := g.SymbolByID("Exp")
	decSym, _ := g.SymbolByID("Dec")
	decInit := &grammar.Production{Index: -1, LHS: decSym, RHS: []int{idSym, eqSym, expSym}}

	before := len(a.Quads())
	a.Reduce(decInit)

	quads := a.Quads()
	if len(quads) != before+1 {
		t.Fatalf("got %d new quadruples, want 1", len(quads)-before)
	}
	got := quads[len(quads)-1]
	if got.Op != ":=" || got.Arg1 != "0" || got.Result != "a" {
		t.Fatalf("initializer quadruple = %+v, want (:=, 0, -, a)", got)
	}
}

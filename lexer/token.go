// Package lexer tokenizes source text into a closed set of kinds,
// using timtadh/lexmachine for DFA-based matching —
// adapted from gorgo's lr/scanner/lexmachine.go adapter, but returning
// this module's own Token type directly from scanner actions instead of
// going through lexmachine.Token, and tracking line numbers itself with
// a stateful counter that tallies newlines as each action fires, rather
// than trusting the matcher's own line bookkeeping.
package lexer

import "clc"

// Token kinds: the literal keywords, separators and operators; the
// synthetic kinds <ID>, <INT>, <FLOAT>; and the end marker used to
// terminate the token vector fed to the parser.
const (
	_ clc.TokKind = iota
	KwVoid
	KwInt
	KwFloat
	KwIf
	KwElse
	KwWhile
	KwReturn
	SepComma
	SepSemi
	SepLParen
	SepRParen
	SepLBrace
	SepRBrace
	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpAssign
	OpPlusAssign
	OpMinusAssign
	OpStarAssign
	OpSlashAssign
	OpAnd
	OpOr
	OpNot
	OpGt
	OpLt
	OpGe
	OpLe
	OpEq
	OpNe
	Ident
	IntLit
	FloatLit
	EndOfInput
)

// keywords, separators and operators, in the literal spelling the
// grammar file uses for their terminal ids.
var keywords = []struct {
	text string
	kind clc.TokKind
}{
	{"void", KwVoid}, {"int", KwInt}, {"float", KwFloat},
	{"if", KwIf}, {"else", KwElse}, {"while", KwWhile}, {"return", KwReturn},
}

var separators = []struct {
	text string
	kind clc.TokKind
}{
	{",", SepComma}, {";", SepSemi}, {"(", SepLParen}, {")", SepRParen},
	{"{", SepLBrace}, {"}", SepRBrace},
}

// operators, longest spellings first is not required for correctness
// (lexmachine resolves ties by longest match regardless of declaration
// order) but is kept for readability.
var operators = []struct {
	text string
	kind clc.TokKind
}{
	{"&&", OpAnd}, {"||", OpOr},
	{"==", OpEq}, {"!=", OpNe}, {">=", OpGe}, {"<=", OpLe},
	{"+=", OpPlusAssign}, {"-=", OpMinusAssign}, {"*=", OpStarAssign}, {"/=", OpSlashAssign},
	{"+", OpPlus}, {"-", OpMinus}, {"*", OpStar}, {"/", OpSlash},
	{"=", OpAssign}, {">", OpGt}, {"<", OpLt}, {"!", OpNot},
}

// Token is this package's clc.Token implementation.
type Token struct {
	kind   clc.TokKind
	lexeme string
	line   int
}

func (t Token) Kind() clc.TokKind { return t.kind }
func (t Token) Lexeme() string    { return t.lexeme }
func (t Token) Line() int         { return t.line }

// SymbolID returns the grammar terminal id this token corresponds to
//: keywords/separators/operators use their own
// literal spelling as their terminal id; identifiers and literals use
// the synthetic ids <ID>, <INT>, <FLOAT>; end-of-input uses the grammar's
// end-marker id, '#'.
func (t Token) SymbolID() string {
	switch t.kind {
	case Ident:
		return "<ID>"
	case IntLit:
		return "<INT>"
	case FloatLit:
		return "<FLOAT>"
	case EndOfInput:
		return "#"
	default:
		return t.lexeme
	}
}

var _ clc.Token = Token{}

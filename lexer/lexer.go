package lexer

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"clc"
)

// tracer traces with key 'clc.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("clc.lexer")
}

// Lexer tokenizes one source file. Construct with New.
type Lexer struct {
	scanner *lexmachine.Scanner
	lines   *lineCounter
}

// New builds a Lexer over src. Comments are stripped in a pre-pass
// (stripComments) rather than matched by the DFA, so that an
// unterminated "/*" comment degrades gracefully to end-of-file instead
// of producing a scanner error.
func New(src string) (*Lexer, error) {
	lex := lexmachine.NewLexer()
	lc := &lineCounter{line: 1}

	for _, kw := range keywords {
		kind := kw.kind
		lex.Add([]byte(escapeLiteral(kw.text)), lc.tokenAction(kind))
	}
	for _, op := range operators {
		kind := op.kind
		lex.Add([]byte(escapeLiteral(op.text)), lc.tokenAction(kind))
	}
	for _, sep := range separators {
		kind := sep.kind
		lex.Add([]byte(escapeLiteral(sep.text)), lc.tokenAction(kind))
	}
	lex.Add([]byte(`[0-9]+\.[0-9]+`), lc.tokenAction(FloatLit))
	lex.Add([]byte(`[0-9]+`), lc.tokenAction(IntLit))
	lex.Add([]byte(`[A-Za-z_][A-Za-z_0-9]*`), lc.tokenAction(Ident))
	lex.Add([]byte(`[\t\n\r ]+`), lc.skipAction())

	if err := lex.Compile(); err != nil {
		return nil, fmt.Errorf("lexer: compiling DFA: %w", err)
	}
	scan, err := lex.Scanner([]byte(stripComments(src)))
	if err != nil {
		return nil, fmt.Errorf("lexer: %w", err)
	}
	return &Lexer{scanner: scan, lines: lc}, nil
}

// Next returns the next token. At end of input it returns a Token with
// kind EndOfInput and an undefined ("bottom") line: a trailing '#'
// sentinel token whose line is ⊥.
func (lx *Lexer) Next() (Token, error) {
	tok, err, eof := lx.scanner.Next()
	for err != nil {
		if ui, is := err.(*machines.UnconsumedInput); is {
			tracer().Errorf("lexer: unrecognized input, skipping one byte")
			lx.scanner.TC = ui.FailTC
			tok, err, eof = lx.scanner.Next()
			continue
		}
		return Token{}, fmt.Errorf("lexer: %w", err)
	}
	if eof {
		return Token{kind: EndOfInput, lexeme: "#", line: 0}, nil
	}
	return tok.(Token), nil
}

// All tokenizes the entire input, appending the trailing end-of-input
// token.
func (lx *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind() == EndOfInput {
			return toks, nil
		}
	}
}

// lineCounter tracks the current 1-based source line while the scanner
// consumes bytes in order, so every token (and every skipped run of
// whitespace) can be tagged with the line it started on.
type lineCounter struct {
	line int
}

func (lc *lineCounter) consume(b []byte) int {
	start := lc.line
	for _, c := range b {
		if c == '\n' {
			lc.line++
		}
	}
	return start
}

func (lc *lineCounter) tokenAction(kind clc.TokKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		line := lc.consume(m.Bytes)
		return Token{kind: kind, lexeme: string(m.Bytes), line: line}, nil
	}
}

func (lc *lineCounter) skipAction() lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		lc.consume(m.Bytes)
		return nil, nil
	}
}

// escapeLiteral backslash-escapes every non-alphanumeric rune of a literal
// so it can be used as a lexmachine regex pattern matching exactly that
// text — the same per-character escaping gorgo's scanner.NewLMAdapter uses
// for punctuation literals. Letters and digits are left bare, since an
// escaped letter such as `\n` or `\t` is a regex escape, not the letter.
func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripComments blanks out "//" line comments and "/* */" block
// comments, preserving every byte offset and newline so the line
// counter built while scanning the result stays correct relative to the
// original source. An unterminated block comment consumes to EOF
// without producing an error.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	n := len(src)
	i := 0
	for i < n {
		if src[i] == '/' && i+1 < n && src[i+1] == '/' {
			for i < n && src[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
			continue
		}
		if src[i] == '/' && i+1 < n && src[i+1] == '*' {
			b.WriteByte(' ')
			b.WriteByte(' ')
			i += 2
			for i < n && !(src[i] == '*' && i+1 < n && src[i+1] == '/') {
				if src[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
				i++
			}
			if i+1 < n {
				b.WriteByte(' ')
				b.WriteByte(' ')
				i += 2
			} else {
				i = n
			}
			continue
		}
		b.WriteByte(src[i])
		i++
	}
	return b.String()
}

// Package parser drives the shift-reduce loop over a token vector using
// ACTION/GOTO tables built by package lr1, performing panic-mode syntax
// error recovery. It is adapted from gorgo's lr/slr.Parser:
// the same parse-stack discipline and reduce-then-goto shape, generalized
// from SLR(1)'s single-value action cells to lr1.Tables' tagged
// shift/reduce/accept cells, driven over a pre-lexed token vector instead
// of a live scanner, and extended with the panic-mode recovery loop this
// front end's error model requires.
package parser

import (
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"

	"clc"
	"clc/grammar"
	"clc/lr1"
)

// tracer traces with key 'clc.parser'.
func tracer() tracing.Trace {
	return tracing.Select("clc.parser")
}

// Analyzer is the semantic-action hook a Parser drives on every shift and
// reduce. Reduce is responsible for popping |RHS| semantic
// frames and pushing exactly one synthesized frame for the production's
// left-hand side.
type Analyzer interface {
	Shift(tok clc.Token)
	Reduce(prod *grammar.Production) error
}

type stackItem struct {
	state int
	sym   int
}

// Parser is a canonical LR(1) shift-reduce driver.
type Parser struct {
	g        *grammar.Grammar
	tables   *lr1.Tables
	analyzer Analyzer
	trace    io.Writer
	stack    []stackItem
	step     int

	SyntaxErrors int
}

// New creates a Parser. trace receives one line per parse step; pass io.Discard if it
// isn't needed.
func New(g *grammar.Grammar, tables *lr1.Tables, analyzer Analyzer, trace io.Writer) *Parser {
	return &Parser{
		g:        g,
		tables:   tables,
		analyzer: analyzer,
		trace:    trace,
		stack:    []stackItem{{state: 0, sym: g.EndMarkerIndex()}},
	}
}

// Parse runs the shift-reduce loop over tokens, which must end with a
// token whose SymbolID is the grammar's end marker ('#'). It returns true
// once an accept action is reached.
func (p *Parser) Parse(tokens []clc.Token) (bool, error) {
	i := 0
	for {
		if i >= len(tokens) {
			return false, fmt.Errorf("parser: token vector exhausted without reaching accept")
		}
		cur := tokens[i]
		symID, known := p.g.SymbolByID(cur.SymbolID())
		if !known {
			symID = -1 // guaranteed-undefined column, triggers recovery below
		}
		p.step++
		state := p.stack[len(p.stack)-1].state
		action := p.tables.Action(state, symID)
		p.emitTrace(state, cur, action)

		switch action.Kind {
		case lr1.ActionShift:
			p.stack = append(p.stack, stackItem{state: action.Target, sym: symID})
			p.analyzer.Shift(cur)
			i++
		case lr1.ActionReduce:
			prod := &p.g.Productions[action.Target]
			if err := p.doReduce(prod); err != nil {
				return false, err
			}
		case lr1.ActionAccept:
			return true, nil
		default:
			p.SyntaxErrors++
			tracer().Errorf("syntax error: unexpected %q at line %d", cur.Lexeme(), cur.Line())
			if !p.recover(symID) {
				return false, fmt.Errorf("parser: panic-mode recovery exhausted the parse stack at line %d", cur.Line())
			}
			// do not advance the input; retry with the same token.
		}
	}
}

func (p *Parser) doReduce(prod *grammar.Production) error {
	n := len(prod.RHS)
	if prod.IsEpsilon(p.g) {
		n = 0
	}
	if n > 0 {
		p.stack = p.stack[:len(p.stack)-n]
	}
	top := p.stack[len(p.stack)-1].state
	target, ok := p.tables.Goto(top, prod.LHS)
	if !ok {
		return fmt.Errorf("parser: GOTO[%d, %s] undefined after reducing production %d",
			top, p.g.Symbols[prod.LHS].ID, prod.Index)
	}
	p.stack = append(p.stack, stackItem{state: target, sym: prod.LHS})
	return p.analyzer.Reduce(prod)
}

// recover implements panic-mode recovery: pop the parse
// stack until ACTION is defined for the current symbol at the new top, or
// until the stack is empty.
func (p *Parser) recover(symID int) bool {
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1].state
		if p.tables.Action(top, symID).Kind != lr1.ActionNone {
			return true
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
	return false
}

func (p *Parser) emitTrace(state int, tok clc.Token, a lr1.Action) {
	var line string
	switch a.Kind {
	case lr1.ActionShift:
		line = fmt.Sprintf("%d: state %d, token %q -> shift %d", p.step, state, tok.Lexeme(), a.Target)
	case lr1.ActionReduce:
		prod := &p.g.Productions[a.Target]
		line = fmt.Sprintf("%d: state %d, token %q -> reduce %d [%s]",
			p.step, state, tok.Lexeme(), prod.Index, p.g.Symbols[prod.LHS].ID)
	case lr1.ActionAccept:
		line = fmt.Sprintf("%d: state %d, token %q -> accept", p.step, state, tok.Lexeme())
	default:
		line = fmt.Sprintf("%d: state %d, token %q -> error", p.step, state, tok.Lexeme())
	}
	fmt.Fprintln(p.trace, line)
	tracer().Debugf(line)
}

package lr1

import (
	"fmt"

	"clc/grammar"
	"clc/lr1/sparse"
)

// ActionKind tags what an ACTION table cell means: shift, reduce, accept, or (implicitly, via sparse.NullValue)
// undefined.
type ActionKind int8

const (
	ActionNone ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// Action is a decoded ACTION table cell. Target is the destination state
// for a shift, the production index for a reduce, and unused for accept.
type Action struct {
	Kind   ActionKind
	Target int
}

func encodeAction(kind ActionKind, target int) int32 {
	return int32(target)*4 + int32(kind)
}

func decodeAction(v int32) Action {
	if v == sparse.NullValue {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionKind(v % 4), Target: int(v / 4)}
}

// Tables is the pair of ACTION and GOTO tables built from a grammar's
// canonical LR(1) collection.
type Tables struct {
	g          *grammar.Grammar
	Collection *Collection
	action     *sparse.IntMatrix
	goto_      *sparse.IntMatrix
}

// ConflictError reports an ACTION cell that would need to hold two
// different actions at once. This is treated as a fatal
// grammar-construction error: the expected grammar is LR(1), so no
// conflicts should arise.
type ConflictError struct {
	State    int
	Terminal string
	Existing Action
	New      Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("lr1: conflict in state %d on %q: existing=%+v new=%+v",
		e.State, e.Terminal, e.Existing, e.New)
}

// BuildTables fills ACTION and GOTO from a canonical collection.
func BuildTables(g *grammar.Grammar, coll *Collection) (*Tables, error) {
	t := &Tables{
		g:          g,
		Collection: coll,
		action:     sparse.NewIntMatrix(coll.Size(), len(g.Symbols)),
		goto_:      sparse.NewIntMatrix(coll.Size(), len(g.Symbols)),
	}
	for _, s := range coll.States() {
		for _, v := range s.Items.Values() {
			li := v.(LR1Item)
			sym, ok := li.Item.PeekSymbol(g)
			if ok {
				if g.IsTerminal(sym) {
					target := coll.gotoTarget(s, sym)
					if target == nil {
						continue
					}
					if err := t.setAction(s.ID, sym, ActionShift, target.ID); err != nil {
						return nil, err
					}
				}
				continue
			}
			// dot is at the end of the production.
			if li.Item.Prod == g.StartProduction && li.Lookahead == g.EndMarkerIndex() {
				if err := t.setAction(s.ID, li.Lookahead, ActionAccept, 0); err != nil {
					return nil, err
				}
				continue
			}
			if err := t.setAction(s.ID, li.Lookahead, ActionReduce, li.Item.Prod); err != nil {
				return nil, err
			}
		}
	}
	for _, nt := range g.NonTerminals {
		for _, s := range coll.States() {
			if target := coll.gotoTarget(s, nt); target != nil {
				t.goto_.Set(s.ID, nt, int32(target.ID))
			}
		}
	}
	tracer().Infof("tables built: %d action cells, %d goto cells", t.action.ValueCount(), t.goto_.ValueCount())
	return t, nil
}

func (t *Tables) setAction(state, terminal int, kind ActionKind, target int) error {
	val := encodeAction(kind, target)
	existing := t.action.Value(state, terminal)
	if existing != sparse.NullValue && existing != val {
		return &ConflictError{
			State:    state,
			Terminal: t.g.Symbols[terminal].ID,
			Existing: decodeAction(existing),
			New:      decodeAction(val),
		}
	}
	t.action.Set(state, terminal, val)
	return nil
}

// Action returns the decoded ACTION[state, terminal] cell.
func (t *Tables) Action(state, terminal int) Action {
	return decodeAction(t.action.Value(state, terminal))
}

// Goto returns GOTO[state, nonTerminal], or (-1, false) if undefined.
func (t *Tables) Goto(state, nonTerminal int) (int, bool) {
	v := t.goto_.Value(state, nonTerminal)
	if v == sparse.NullValue {
		return -1, false
	}
	return int(v), true
}

// StateCount reports how many states the tables cover.
func (t *Tables) StateCount() int {
	return t.Collection.Size()
}

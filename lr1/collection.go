package lr1

import (
	"sort"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"

	"clc/grammar"
	"clc/lr1/itemset"
)

// tracer traces with key 'clc.lr1'.
func tracer() tracing.Trace {
	return tracing.Select("clc.lr1")
}

// State is a node of the canonical collection: a
// referentially-stable item set plus its serial ID.
type State struct {
	ID    int
	Items *itemset.Set
}

// transition is a directed, symbol-labelled edge between two states.
type transition struct {
	from  *State
	to    *State
	label int
}

// Collection is the canonical collection of LR(1) item sets for a grammar,
// together with the GOTO graph connecting them. States are kept in a
// treeset ordered by ID (mirroring gorgo's CFSM state bookkeeping in
// lr/tables.go); edges in an arraylist for the same reason.
//
// Looking up "is this item set already a state?" by a full Equals scan
// over every known state is O(states); with the hundreds of states a
// nontrivial grammar produces that adds up across the O(states*symbols)
// construction loop. byHash buckets states by a structural hash of their
// (sorted) item contents first, so the Equals fallback only ever compares
// within a small bucket.
type Collection struct {
	g      *grammar.Grammar
	states *treeset.Set
	byHash map[string][]*State
	edges  *arraylist.List
	Start  *State
	nextID int
}

func stateComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*State).ID, b.(*State).ID)
}

func newCollection(g *grammar.Grammar) *Collection {
	return &Collection{
		g:      g,
		states: treeset.NewWith(stateComparator),
		byHash: make(map[string][]*State),
		edges:  arraylist.New(),
	}
}

// Build constructs the canonical LR(1) collection for g via worklist
// saturation.
func Build(g *grammar.Grammar) (*Collection, error) {
	c := newCollection(g)
	c.Start = c.addState(seedCollection(g))
	worklist := []*State{c.Start}
	symbols := gotoSymbols(g)
	for len(worklist) > 0 {
		s := worklist[0]
		worklist = worklist[1:]
		for _, sym := range symbols {
			gs := gotoClosure(g, s.Items, sym)
			if gs.Empty() {
				continue
			}
			target := c.findByItems(gs)
			if target == nil {
				target = c.addState(gs)
				worklist = append(worklist, target)
			}
			c.addEdge(s, target, sym)
		}
	}
	tracer().Infof("canonical collection: %d states, %d edges", c.states.Size(), c.edges.Size())
	return c, nil
}

// gotoSymbols returns every symbol GOTO may legally transition on:
// terminals (including the end marker) and non-terminals, never ε.
func gotoSymbols(g *grammar.Grammar) []int {
	out := make([]int, 0, len(g.Terminals)+len(g.NonTerminals))
	out = append(out, g.Terminals...)
	out = append(out, g.NonTerminals...)
	return out
}

func (c *Collection) addState(items *itemset.Set) *State {
	if existing := c.findByItems(items); existing != nil {
		return existing
	}
	s := &State{ID: c.nextID, Items: items}
	c.nextID++
	c.states.Add(s)
	h := hashItemSet(items)
	c.byHash[h] = append(c.byHash[h], s)
	return s
}

func (c *Collection) findByItems(items *itemset.Set) *State {
	h := hashItemSet(items)
	for _, cand := range c.byHash[h] {
		if cand.Items.Equals(items) {
			return cand
		}
	}
	return nil
}

func (c *Collection) addEdge(from, to *State, label int) {
	c.edges.Add(&transition{from: from, to: to, label: label})
}

// States returns every state, ordered by ID.
func (c *Collection) States() []*State {
	vals := c.states.Values()
	out := make([]*State, len(vals))
	for i, v := range vals {
		out[i] = v.(*State)
	}
	return out
}

// Size returns the number of states in the collection.
func (c *Collection) Size() int {
	return c.states.Size()
}

// gotoTarget returns the state reached from s on symbol label, or nil.
func (c *Collection) gotoTarget(s *State, label int) *State {
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*transition)
		if e.from == s && e.label == label {
			return e.to
		}
	}
	return nil
}

// hashableItem is the structural, order-independent shape used to key an
// item set's dedup-hash bucket.
type hashableItem struct {
	Prod      int
	Dot       int
	Lookahead int
}

func hashItemSet(items *itemset.Set) string {
	vals := items.Values()
	hs := make([]hashableItem, len(vals))
	for i, v := range vals {
		li := v.(LR1Item)
		hs[i] = hashableItem{Prod: li.Item.Prod, Dot: li.Item.Dot, Lookahead: li.Lookahead}
	}
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Prod != hs[j].Prod {
			return hs[i].Prod < hs[j].Prod
		}
		if hs[i].Dot != hs[j].Dot {
			return hs[i].Dot < hs[j].Dot
		}
		return hs[i].Lookahead < hs[j].Lookahead
	})
	h, _ := structhash.Hash(hs, 1)
	return h
}

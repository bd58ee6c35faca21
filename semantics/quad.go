package semantics

import (
	"fmt"
	"strconv"
)

// emptyField is the placeholder for an unused quadruple operand.
const emptyField = "-"

// Quadruple is a three-address instruction: label, op, arg1, arg2, result.
type Quadruple struct {
	Label  int
	Op     string
	Arg1   string
	Arg2   string
	Result string
}

// String renders the quadruple in its literal output format.
func (q Quadruple) String() string {
	return fmt.Sprintf("%d : %s, %s, %s, %s", q.Label, q.Op, q.Arg1, q.Arg2, q.Result)
}

// QuadList is the ordered, strictly-increasing-labeled quadruple list
// plus the LIFO backpatch stack. Labels start at 1; label 0 is reserved
// for the optional jump-to-main (cmd/clc prepends it after a successful
// parse, keyed off Analyzer.MainLabel).
type QuadList struct {
	quads     []Quadruple
	nextLabel int
	backpatch []int // indices into quads whose Result is still unresolved
	tempCount int
}

func newQuadList() *QuadList {
	return &QuadList{nextLabel: 1}
}

func fillField(s string) string {
	if s == "" {
		return emptyField
	}
	return s
}

// Peek returns the label the next Emit call will use, without consuming
// it.
func (q *QuadList) Peek() int { return q.nextLabel }

// Emit appends a fully-resolved quadruple and returns its index into
// the quadruple slice (not its label).
func (q *QuadList) Emit(op, arg1, arg2, result string) int {
	label := q.nextLabel
	q.nextLabel++
	q.quads = append(q.quads, Quadruple{
		Label: label, Op: op, Arg1: fillField(arg1), Arg2: fillField(arg2), Result: fillField(result),
	})
	return len(q.quads) - 1
}

// EmitPending is like Emit but leaves Result blank: a jump quadruple
// whose target a later reduction must resolve with Backfill.
func (q *QuadList) EmitPending(op, arg1, arg2 string) int {
	label := q.nextLabel
	q.nextLabel++
	q.quads = append(q.quads, Quadruple{
		Label: label, Op: op, Arg1: fillField(arg1), Arg2: fillField(arg2), Result: "",
	})
	return len(q.quads) - 1
}

// Backfill resolves a pending jump quadruple's Result field.
func (q *QuadList) Backfill(idx int, result string) {
	q.quads[idx].Result = result
}

// PushBackpatch records idx as awaiting a Backfill call.
func (q *QuadList) PushBackpatch(idx int) {
	q.backpatch = append(q.backpatch, idx)
}

// PopBackpatch removes and returns the most recently pushed pending
// index.
func (q *QuadList) PopBackpatch() int {
	idx := q.backpatch[len(q.backpatch)-1]
	q.backpatch = q.backpatch[:len(q.backpatch)-1]
	return idx
}

// BackpatchEmpty reports whether every pushed index has been resolved;
// it should be true once a parse reaches accept.
func (q *QuadList) BackpatchEmpty() bool { return len(q.backpatch) == 0 }

// NewTemp mints a fresh temporary name, T0, T1, ....
func (q *QuadList) NewTemp() string {
	t := "T" + strconv.Itoa(q.tempCount)
	q.tempCount++
	return t
}

// Quads returns the finished quadruple list in emission order.
func (q *QuadList) Quads() []Quadruple { return q.quads }

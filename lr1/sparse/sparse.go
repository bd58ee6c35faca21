/*
Package sparse implements a sparse integer matrix, used for the ACTIVE
ACTION and GOTO tables of a canonical LR(1) parser.

This is a COO (triplet) encoding. A cell here holds a single tagged
value rather than a pair: any would-be conflict is treated as a fatal
grammar-construction error rather than a value to store, so a second
slot per cell has no job to do and is dropped.
*/
package sparse

// NullValue marks an empty (undefined) table cell.
const NullValue = int32(-2147483648)

// IntMatrix is a sparse m-by-n matrix of int32, with exactly one value
// (or NullValue) per cell. Construct with NewIntMatrix.
type IntMatrix struct {
	values []triplet
	rowcnt int
	colcnt int
}

type triplet struct {
	row, col int
	value    int32
}

// NewIntMatrix creates an m x n matrix, all cells initially NullValue.
func NewIntMatrix(m, n int) *IntMatrix {
	return &IntMatrix{rowcnt: m, colcnt: n}
}

func (m *IntMatrix) M() int { return m.rowcnt }
func (m *IntMatrix) N() int { return m.colcnt }

// ValueCount returns the number of explicitly-set cells.
func (m *IntMatrix) ValueCount() int {
	return len(m.values)
}

// Value returns the value stored at (i,j), or NullValue if unset.
func (m *IntMatrix) Value(i, j int) int32 {
	for _, t := range m.values {
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				return t.value
			}
			break
		}
	}
	return NullValue
}

// Set stores value at (i,j), overwriting any prior value there. Set
// reports whether a value was already present (i.e. this is a conflict)
// so callers can turn repeated sets into a fatal construction error for
// an LR(1)-nonconformant grammar.
func (m *IntMatrix) Set(i, j int, value int32) (overwrote bool) {
	at := 0
	for k, t := range m.values {
		if !t.storedLeftOf(i, j) {
			if t.storedAt(i, j) {
				m.values[k].value = value
				return true
			}
			break
		}
		at++
	}
	tnew := triplet{row: i, col: j, value: value}
	m.values = append(m.values, tnew)
	copy(m.values[at+1:], m.values[at:])
	m.values[at] = tnew
	return false
}

func (t *triplet) storedLeftOf(i, j int) bool {
	return t.row < i || (t.row == i && t.col < j)
}

func (t *triplet) storedAt(i, j int) bool {
	return t.row == i && t.col == j
}

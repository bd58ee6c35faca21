package itemset

import "testing"

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	if !s.Add(1) {
		t.Fatalf("first Add should report growth")
	}
	if s.Add(1) {
		t.Fatalf("second Add of the same value should report no growth")
	}
	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}
}

func TestDifferenceExcludesSharedElements(t *testing.T) {
	a := New()
	a.Add(1)
	a.Add(2)
	a.Add(3)
	b := New()
	b.Add(2)
	d := a.Difference(b)
	if d.Size() != 2 || !d.Has(1) || !d.Has(3) {
		t.Fatalf("Difference = %v, want {1,3}", d.Values())
	}
}

func TestUnionMergesAndReportsGrowth(t *testing.T) {
	a := New()
	a.Add(1)
	b := New()
	b.Add(1)
	b.Add(2)
	if !a.Union(b) {
		t.Fatalf("Union should report growth when b adds new elements")
	}
	if a.Union(b) {
		t.Fatalf("a second identical Union should report no growth")
	}
	if a.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", a.Size())
	}
}

func TestEqualsIsOrderIndependent(t *testing.T) {
	a := New()
	a.Add(1)
	a.Add(2)
	b := New()
	b.Add(2)
	b.Add(1)
	if !a.Equals(b) {
		t.Fatalf("expected sets with same elements in different order to be equal")
	}
	b.Add(3)
	if a.Equals(b) {
		t.Fatalf("expected sets of different size to be unequal")
	}
}

func TestIterationVisitsElementsAddedDuringTraversal(t *testing.T) {
	s := New()
	s.Add(1)
	visited := []interface{}{}
	s.IterateOnce()
	for s.Next() {
		v := s.Item()
		visited = append(visited, v)
		if v == 1 {
			s.Add(2) // worklist-style growth mid-traversal
		}
	}
	if len(visited) != 2 {
		t.Fatalf("visited %v, want 2 elements (including the one added mid-traversal)", visited)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	a := New()
	a.Add(1)
	b := a.Copy()
	b.Add(2)
	if a.Has(2) {
		t.Fatalf("mutating the copy should not affect the original")
	}
}

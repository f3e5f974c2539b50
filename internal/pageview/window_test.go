package pageview

import (
	"reflect"
	"testing"
)

func TestComputeWindowAlwaysContainsTarget(t *testing.T) {
	const buffer = 5
	for _, total := range []int{1, 2, 7, 10, 11, 100} {
		for target := 1; target <= total; target++ {
			r := ComputeWindow(target, total, buffer)
			if !r.Contains(target) {
				t.Fatalf("total=%d target=%d: %v does not contain target", total, target, r)
			}
			if r.Start < 1 || r.End > total {
				t.Fatalf("total=%d target=%d: %v out of bounds", total, target, r)
			}
			if r.Len() > 2*buffer+1 {
				t.Fatalf("total=%d target=%d: %v wider than %d", total, target, r, 2*buffer+1)
			}
			if r.Len() != len(r.Pages()) {
				t.Fatalf("total=%d target=%d: %v not contiguous", total, target, r)
			}
		}
	}
}

func TestComputeWindowClamps(t *testing.T) {
	tests := []struct {
		name          string
		target, total int
		want          Range
	}{
		{"upper bound", 8, 10, Range{3, 10}},
		{"lower bound", 2, 100, Range{1, 7}},
		{"middle", 50, 100, Range{45, 55}},
		{"target past end", 40, 10, Range{5, 10}},
		{"empty document", 1, 0, Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeWindow(tt.target, tt.total, 5); got != tt.want {
				t.Fatalf("ComputeWindow(%d, %d) = %v, want %v", tt.target, tt.total, got, tt.want)
			}
		})
	}
}

func TestShouldReloadHysteresis(t *testing.T) {
	tests := []struct {
		name     string
		old, new Range
		want     bool
		diff     int
	}{
		{"shift by one", Range{10, 20}, Range{11, 21}, true, 2},
		{"unchanged", Range{10, 20}, Range{10, 20}, false, 0},
		{"grow by one", Range{1, 6}, Range{1, 7}, false, 1},
		{"disjoint", Range{1, 3}, Range{10, 12}, true, 6},
		{"from empty", Range{}, Range{1, 6}, true, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := SymmetricDiff(tt.old, tt.new); d != tt.diff {
				t.Errorf("SymmetricDiff = %d, want %d", d, tt.diff)
			}
			if got := ShouldReload(tt.old, tt.new, 2); got != tt.want {
				t.Errorf("ShouldReload = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowManagerRetainsUntilConverge(t *testing.T) {
	w := NewWindowManager(2, 2)

	next, ok := w.Propose(3, 20)
	if !ok || next != (Range{1, 5}) {
		t.Fatalf("initial Propose = %v, %v", next, ok)
	}
	if added := w.Apply(next); !reflect.DeepEqual(added, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("added = %v", added)
	}

	if _, ok := w.Propose(3, 20); ok {
		t.Fatal("same target should be suppressed")
	}

	next, _ = w.Propose(12, 20)
	added := w.Apply(next)
	if !reflect.DeepEqual(added, []int{10, 11, 12, 13, 14}) {
		t.Fatalf("added = %v", added)
	}
	if w.Converged() {
		t.Fatal("window should hold retained pages")
	}
	if !w.Materialized(1) || !w.Materialized(14) {
		t.Fatal("both generations should be materialized")
	}

	evicted := w.Converge()
	if !reflect.DeepEqual(evicted, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("evicted = %v", evicted)
	}
	if !w.Converged() {
		t.Fatal("window should be converged")
	}
	if !reflect.DeepEqual(w.Pages(), []int{10, 11, 12, 13, 14}) {
		t.Fatalf("pages = %v", w.Pages())
	}

	w.Reset()
	if len(w.Pages()) != 0 || !w.Current().Empty() {
		t.Fatal("Reset should clear the window")
	}
}

func TestRangeString(t *testing.T) {
	if s := (Range{3, 10}).String(); s != "[3,10]" {
		t.Fatalf("String = %q", s)
	}
	if s := (Range{}).String(); s != "[]" {
		t.Fatalf("String = %q", s)
	}
}

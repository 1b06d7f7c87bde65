package formula

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// normalize sorts clauses by length then lexicographically, so tests don't
// depend on the particular order ToCNF happens to produce clauses of the
// same length in — only the documented ascending-by-length guarantee and
// the clause contents are part of the contract.
func normalize(clauses [][]int) [][]int {
	out := make([][]int, len(clauses))
	copy(out, clauses)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

func mustToCNF(t *testing.T, formula string) [][]int {
	t.Helper()
	n, err := Parse(formula)
	if err != nil {
		t.Fatalf("Parse(%q): %v", formula, err)
	}
	return ToCNF(n)
}

func TestToCNFPlainAnd(t *testing.T) {
	got := normalize(mustToCNF(t, "1 & 2"))
	want := normalize([][]int{{1}, {2}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFPlainOr(t *testing.T) {
	got := normalize(mustToCNF(t, "1 | 2"))
	want := [][]int{{1, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFNegationPushedThroughAnd(t *testing.T) {
	// !(1 & 2) == !1 | !2
	got := normalize(mustToCNF(t, "!(1 & 2)"))
	want := [][]int{{-1, -2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFImplication(t *testing.T) {
	// 1 => 2 == !1 | 2
	got := normalize(mustToCNF(t, "1 => 2"))
	want := [][]int{{-1, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFXor(t *testing.T) {
	// 1 ^ 2 == (1 | 2) & (!1 | !2)
	got := normalize(mustToCNF(t, "1 ^ 2"))
	want := normalize([][]int{{1, 2}, {-1, -2}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFTautologyDropped(t *testing.T) {
	// 1 | -1 is always true; the clause set must be empty.
	got := mustToCNF(t, "1 | -1")
	if len(got) != 0 {
		t.Errorf("expected no clauses for a tautology, got %v", got)
	}
}

func TestToCNFSubsumptionPrunesLongerClause(t *testing.T) {
	// (1 | 2) & (1 | 2 | 3): the second clause is subsumed by the first.
	got := normalize(mustToCNF(t, "(1 | 2) & (1 | 2 | 3)"))
	want := [][]int{{1, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestToCNFDoesNotMutateInput(t *testing.T) {
	n, err := Parse("1 & 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	before := n.String()
	_ = ToCNF(n)
	if after := n.String(); after != before {
		t.Errorf("ToCNF mutated its input: before %q, after %q", before, after)
	}
}

func TestToCNFEqBiconditional(t *testing.T) {
	// 1 == 2 == (!1 | 2) & (!2 | 1)
	got := normalize(mustToCNF(t, "1 == 2"))
	want := normalize([][]int{{-1, 2}, {1, -2}})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

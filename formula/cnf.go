package formula

import "sort"

// clauseInProgress is a disjunction of AST fragments not yet reduced to
// literals. The worklist holds clauses still being rewritten; a clause
// moves out of the worklist and into the result set once every fragment
// in it is a Literal.
type clauseInProgress []*Node

// ToCNF converts n into conjunctive normal form by worklist rewrite: no
// Tseitin auxiliary variables are introduced, ever. The result is a clause
// set with no tautologies and no clause subsumed by another, sorted
// ascending by clause length. n is not mutated; every rewrite step builds
// new nodes rather than overwriting n's fields in place.
func ToCNF(n *Node) [][]int {
	work := []clauseInProgress{{n.Duplicate()}}
	var result [][]int

	for len(work) > 0 {
		last := len(work) - 1
		clause := work[last]
		work = work[:last]

		if idx := firstNonLiteral(clause); idx < 0 {
			result = insertReduce(result, canonicalize(literalsOf(clause)))
		} else {
			work = append(work, rewrite(clause, idx)...)
		}
	}

	return result
}

func firstNonLiteral(c clauseInProgress) int {
	for i, f := range c {
		if f.Kind != Literal {
			return i
		}
	}
	return -1
}

func literalsOf(c clauseInProgress) []int {
	lits := make([]int, len(c))
	for i, f := range c {
		lits[i] = f.Value
	}
	return lits
}

func copyClause(c clauseInProgress) clauseInProgress {
	out := make(clauseInProgress, len(c))
	copy(out, c)
	return out
}

// rewrite replaces the fragment at idx with its expansion, possibly
// splitting the clause into two worklist entries (for And, Xor and Eq,
// which each introduce a case split rather than a single substitution).
func rewrite(clause clauseInProgress, idx int) []clauseInProgress {
	f := clause[idx]

	switch f.Kind {
	case Not:
		clause[idx] = rewriteNot(f.Left)
		return []clauseInProgress{clause}

	case Rimpl: // a => b  ==  !a | b
		a, b := f.Left, f.Right
		clause[idx] = &Node{Kind: Not, Left: a}
		clause = append(clause, b)
		return []clauseInProgress{clause}

	case Limpl: // a <= b  ==  a | !b
		a, b := f.Left, f.Right
		clause[idx] = &Node{Kind: Not, Left: b}
		clause = append(clause, a)
		return []clauseInProgress{clause}

	case Or:
		a, b := f.Left, f.Right
		clause[idx] = a
		clause = append(clause, b)
		return []clauseInProgress{clause}

	case And:
		a, b := f.Left, f.Right
		other := copyClause(clause)
		clause[idx] = a
		other[idx] = b
		return []clauseInProgress{clause, other}

	case Xor: // a ^ b  ==  (a | b) & (!a | !b)
		a, b := f.Left, f.Right
		other := copyClause(clause)
		clause[idx] = a
		clause = append(clause, b)
		other[idx] = &Node{Kind: Not, Left: a}
		other = append(other, &Node{Kind: Not, Left: b})
		return []clauseInProgress{clause, other}

	case Eq: // a == b  ==  (!a | b) & (!b | a)
		a, b := f.Left, f.Right
		other := copyClause(clause)
		clause[idx] = &Node{Kind: Not, Left: a}
		clause = append(clause, b)
		other[idx] = &Node{Kind: Not, Left: b}
		other = append(other, a)
		return []clauseInProgress{clause, other}
	}

	panic("formula: rewrite called on a literal fragment")
}

// rewriteNot pushes a negation one level down, per De Morgan / implication
// duality. The double-negation and literal cases collapse directly.
func rewriteNot(child *Node) *Node {
	switch child.Kind {
	case Literal:
		return Lit(-child.Value)
	case Not:
		return child.Left
	case Xor:
		return &Node{Kind: Eq, Left: child.Left, Right: child.Right}
	case Eq:
		return &Node{Kind: Xor, Left: child.Left, Right: child.Right}
	case And:
		return &Node{Kind: Or, Left: &Node{Kind: Not, Left: child.Left}, Right: &Node{Kind: Not, Left: child.Right}}
	case Or:
		return &Node{Kind: And, Left: &Node{Kind: Not, Left: child.Left}, Right: &Node{Kind: Not, Left: child.Right}}
	case Rimpl: // !(a => b) == a & !b
		return &Node{Kind: And, Left: child.Left, Right: &Node{Kind: Not, Left: child.Right}}
	case Limpl: // !(a <= b) == !a & b
		return &Node{Kind: And, Left: &Node{Kind: Not, Left: child.Left}, Right: child.Right}
	}
	panic("formula: rewriteNot called on unknown kind")
}

// canonicalize sorts lits by absolute value (ties broken negative-before-
// positive) and drops adjacent duplicates. That single order is reused
// below both to spot tautologies (v and -v end up adjacent) and to do a
// linear-time subsumption check between two canonical clauses.
func canonicalize(lits []int) []int {
	sort.Slice(lits, func(i, j int) bool { return litLess(lits[i], lits[j]) })
	out := lits[:0]
	for i, l := range lits {
		if i == 0 || l != out[len(out)-1] {
			out = append(out, l)
		}
	}
	return out
}

func litLess(a, b int) bool {
	aa, ba := abs(a), abs(b)
	if aa != ba {
		return aa < ba
	}
	return a < 0 && b > 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// insertReduce drops tautological clauses, drops clauses already subsumed
// by a shorter (or equal) clause already in result, drops every clause in
// result that the new clause subsumes, and otherwise inserts the new
// clause keeping result sorted by ascending length.
func insertReduce(result [][]int, clause []int) [][]int {
	for i := 1; i < len(clause); i++ {
		if clause[i] == -clause[i-1] {
			return result
		}
	}

	for _, existing := range result {
		if subsumes(existing, clause) {
			return result
		}
	}

	kept := make([][]int, 0, len(result)+1)
	for _, existing := range result {
		if !subsumes(clause, existing) {
			kept = append(kept, existing)
		}
	}

	at := sort.Search(len(kept), func(i int) bool { return len(kept[i]) >= len(clause) })
	kept = append(kept, nil)
	copy(kept[at+1:], kept[at:])
	kept[at] = clause
	return kept
}

// subsumes reports whether every literal of a is present in b. Both slices
// must already be canonicalize-sorted.
func subsumes(a, b []int) bool {
	if len(a) > len(b) {
		return false
	}
	j := 0
	for _, x := range a {
		for j < len(b) && litLess(b[j], x) {
			j++
		}
		if j >= len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}

// Package satproblem is the named-variable layer on top of basecnf: callers
// add clauses, cardinality encodings, and formula-template instances using
// their own variable names, and read results back by name.
package satproblem

import (
	"fmt"
	"sort"

	"github.com/TestudoAquatilis/sat-shell/basecnf"
	"github.com/TestudoAquatilis/sat-shell/core"
	"github.com/TestudoAquatilis/sat-shell/formula"
)

// Problem is a SAT problem over named boolean variables. The zero value is
// not usable; use New.
type Problem struct {
	cnf *basecnf.CNF

	nameToVar map[string]int
	varToName map[int]string
	lastVar   int

	solverRun   bool
	satisfiable bool
	varResult   map[string]bool

	formulaCache map[string][][]int
	aux1ofn      int
}

// New returns an empty Problem.
func New() *Problem {
	return &Problem{
		cnf:          basecnf.New(),
		nameToVar:    make(map[string]int),
		varToName:    make(map[int]string),
		formulaCache: make(map[string][][]int),
	}
}

// Reset discards every clause, variable mapping, and solution, and returns
// p so it can be chained after construction.
func (p *Problem) Reset() *Problem {
	*p = *New()
	return p
}

// splitSign strips any number of leading '-' characters, toggling negation
// each time, and reports ok=false for an empty string or a literal that is
// nothing but dashes.
func splitSign(lit string) (name string, negated bool, ok bool) {
	for len(lit) > 0 && lit[0] == '-' {
		negated = !negated
		lit = lit[1:]
	}
	if lit == "" {
		return "", false, false
	}
	return lit, negated, true
}

// encodeLiteral maps a (possibly negated) variable name to a signed
// integer, assigning the next free variable number the first time a name
// is seen.
func (p *Problem) encodeLiteral(lit string) (int, error) {
	name, negated, ok := splitSign(lit)
	if !ok {
		return 0, core.Newf("satproblem", "encodeLiteral", core.KindMalformedInput,
			"literal %q has no variable name", lit)
	}

	v, known := p.nameToVar[name]
	if !known {
		p.lastVar++
		v = p.lastVar
		p.nameToVar[name] = v
		p.varToName[v] = name
	}
	if negated {
		return -v, nil
	}
	return v, nil
}

// clearSolutionState forgets a previous Solve result, the same way adding a
// clause or encoding invalidates it. It is a no-op if the problem was never
// solved since the last change.
func (p *Problem) clearSolutionState() {
	if p.solverRun {
		p.solverRun = false
		p.satisfiable = false
		p.varResult = nil
	}
}

// AddClause adds a clause given as named, optionally negated, literals.
func (p *Problem) AddClause(lits []string) error {
	if len(lits) == 0 {
		return core.New("satproblem", "AddClause", core.KindMalformedInput, "clause has no literals")
	}
	for _, lit := range lits {
		if _, _, ok := splitSign(lit); !ok {
			return core.Newf("satproblem", "AddClause", core.KindMalformedInput, "invalid literal %q", lit)
		}
	}

	encoded := make([]int, len(lits))
	for i, lit := range lits {
		v, err := p.encodeLiteral(lit)
		if err != nil {
			return err
		}
		encoded[i] = v
	}

	if err := p.cnf.AddClause(encoded); err != nil {
		return err
	}
	p.clearSolutionState()
	return nil
}

// AddEncoding applies a cardinality encoding over lits. encoding is one of
// "1ofn" (direct, exactly one), "2ofn" (direct, exactly two), "mofn"
// (direct, exactly m), or "1ofn_order" (the n-1-auxiliary order encoding,
// also exactly one); m is ignored for "1ofn" and "2ofn".
func (p *Problem) AddEncoding(lits []string, encoding string, m int) error {
	switch encoding {
	case "1ofn_order":
		return p.add1ofnOrder(lits)
	case "1ofn":
		return p.addMofnDirect(lits, 1)
	case "2ofn":
		return p.addMofnDirect(lits, 2)
	case "mofn":
		return p.addMofnDirect(lits, m)
	default:
		return core.Newf("satproblem", "AddEncoding", core.KindMalformedInput, "unknown encoding %q", encoding)
	}
}

// add1ofnOrder applies the order encoding for "exactly one of n": n-1
// auxiliary variables chain together so that auxiliary i is true exactly
// when none of main literals 0..i is the chosen one (the chosen literal
// comes later).
// n==0 is a no-op; n==1 degenerates to a unit clause.
func (p *Problem) add1ofnOrder(lits []string) error {
	n := len(lits)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return p.AddClause(lits)
	}

	main := make([]int, n)
	for i, lit := range lits {
		v, err := p.encodeLiteral(lit)
		if err != nil {
			return err
		}
		main[i] = v
	}

	help := make([]int, n-1)
	for i := range help {
		v, err := p.encodeLiteral(auxName1ofn(p.aux1ofn, i))
		if err != nil {
			return err
		}
		help[i] = v
	}

	addInts := func(clause ...int) error { return p.cnf.AddClause(clause) }

	for i := 0; i < n-2; i++ {
		if err := addInts(help[i], -help[i+1]); err != nil {
			return err
		}
	}

	if err := addInts(main[0], help[0]); err != nil {
		return err
	}
	if err := addInts(-main[0], -help[0]); err != nil {
		return err
	}

	for i := 1; i < n-1; i++ {
		if err := addInts(-main[i], help[i-1]); err != nil {
			return err
		}
		if err := addInts(-main[i], -help[i]); err != nil {
			return err
		}
		if err := addInts(main[i], -help[i-1], help[i]); err != nil {
			return err
		}
	}

	last := n - 1
	if err := addInts(-main[last], help[last-1]); err != nil {
		return err
	}
	if err := addInts(main[last], -help[last-1]); err != nil {
		return err
	}

	p.aux1ofn++
	p.clearSolutionState()
	return nil
}

func auxName1ofn(gen, i int) string {
	return fmt.Sprintf("_int_1ofn_%d_%d_", gen, i)
}

// addMofnDirect applies the direct encoding for "exactly m of n": every
// (n-m+1)-subset must contain a true literal (at least m true), and every
// (m+1)-subset must contain a false literal (at most m true). m>n is a
// no-op, as is n<=1; m==n emits n unit clauses rather than a single
// n-literal combination, since that is strictly more informative to the
// solver.
func (p *Problem) addMofnDirect(lits []string, m int) error {
	n := len(lits)
	if m > n {
		return nil
	}
	if n <= 1 {
		return nil
	}
	if n == m {
		for _, lit := range lits {
			if err := p.AddClause([]string{lit}); err != nil {
				return err
			}
		}
		return nil
	}

	main := make([]int, n)
	for i, lit := range lits {
		v, err := p.encodeLiteral(lit)
		if err != nil {
			return err
		}
		main[i] = v
	}

	for _, idxs := range combinations(n, n-m+1) {
		clause := make([]int, len(idxs))
		for j, ix := range idxs {
			clause[j] = main[ix]
		}
		if err := p.cnf.AddClause(clause); err != nil {
			return err
		}
	}

	for _, idxs := range combinations(n, m+1) {
		clause := make([]int, len(idxs))
		for j, ix := range idxs {
			clause[j] = -main[ix]
		}
		if err := p.cnf.AddClause(clause); err != nil {
			return err
		}
	}

	p.clearSolutionState()
	return nil
}

// combinations returns every k-element subset of {0, ..., n-1}, as
// strictly increasing index slices, in lexicographic order. It returns nil
// if k is out of [0, n].
func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var result [][]int
	for {
		c := make([]int, k)
		copy(c, idx)
		result = append(result, c)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return result
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// AddFormulaMapping instantiates formula (parsed and converted to CNF once,
// then cached by its raw string for reuse) against mapping, whose i-th
// entry names the variable standing in for formula's literal i+1. On any
// mapping error, nothing from this call is added: the whole template
// instance is validated before any clause is inserted.
func (p *Problem) AddFormulaMapping(formulaStr string, mapping []string) error {
	if len(mapping) == 0 {
		return core.New("satproblem", "AddFormulaMapping", core.KindMalformedInput, "mapping has no literals")
	}

	clauses, ok := p.formulaCache[formulaStr]
	if !ok {
		root, err := formula.Parse(formulaStr)
		if err != nil {
			return core.Newf("satproblem", "AddFormulaMapping", core.KindMalformedInput,
				"could not parse formula %q: %v", formulaStr, err)
		}
		clauses = formula.ToCNF(root)
		p.formulaCache[formulaStr] = clauses
	}

	encodedMapping := make([]int, len(mapping)+1) // 1-based, index 0 unused
	for i, lit := range mapping {
		v, err := p.encodeLiteral(lit)
		if err != nil {
			return err
		}
		encodedMapping[i+1] = v
	}

	mapped := make([][]int, 0, len(clauses))
	for _, clause := range clauses {
		mappedClause := make([]int, len(clause))
		for j, raw := range clause {
			idx, negated := raw, false
			if idx < 0 {
				idx, negated = -idx, true
			}
			if idx == 0 || idx > len(mapping) {
				return core.Newf("satproblem", "AddFormulaMapping", core.KindMappingIncomplete,
					"formula %q uses variable %d but only %d are mapped", formulaStr, idx, len(mapping))
			}
			v := encodedMapping[idx]
			if negated {
				v = -v
			}
			mappedClause[j] = v
		}
		mapped = append(mapped, mappedClause)
	}

	for _, clause := range mapped {
		if err := p.cnf.AddClause(clause); err != nil {
			return err
		}
	}
	p.clearSolutionState()
	return nil
}

// Solve invokes the external solver and records the result by name.
func (p *Problem) Solve(opts basecnf.SolveOptions) (bool, error) {
	sat, err := p.cnf.Solve(opts)
	if err != nil {
		return false, err
	}

	p.solverRun = true
	p.satisfiable = sat
	p.varResult = make(map[string]bool)

	if sat {
		for _, lit := range p.cnf.Solution() {
			v, assignment := lit, true
			if v < 0 {
				v, assignment = -v, false
			}
			name, ok := p.varToName[v]
			if !ok {
				continue
			}
			p.varResult[name] = assignment
		}
	}

	return sat, nil
}

// CancelSolution blocks the current solution (so the next Solve finds a
// different one, if any) and forgets the cached per-name result.
func (p *Problem) CancelSolution() {
	p.cnf.CancelSolution()
	p.clearSolutionState()
}

// Satisfiable reports the last solve's result. It errors if the problem
// has not been solved since its last change.
func (p *Problem) Satisfiable() (bool, error) {
	if !p.solverRun {
		return false, core.New("satproblem", "Satisfiable", core.KindNoState, "problem not yet solved")
	}
	return p.satisfiable, nil
}

// VarResult returns the assigned value of name in the last solution.
func (p *Problem) VarResult(name string) (bool, error) {
	if !p.solverRun {
		return false, core.New("satproblem", "VarResult", core.KindNoState, "problem not yet solved")
	}
	if !p.satisfiable {
		return false, core.New("satproblem", "VarResult", core.KindNoState, "problem not satisfiable")
	}
	v, ok := p.varResult[name]
	if !ok {
		return false, core.Newf("satproblem", "VarResult", core.KindNoState, "unknown variable %q", name)
	}
	return v, nil
}

// VarResultList returns every variable name assigned to assignment in the
// last solution, sorted for deterministic output.
func (p *Problem) VarResultList(assignment bool) ([]string, error) {
	if !p.solverRun {
		return nil, core.New("satproblem", "VarResultList", core.KindNoState, "problem not yet solved")
	}
	if !p.satisfiable {
		return nil, core.New("satproblem", "VarResultList", core.KindNoState, "problem not satisfiable")
	}

	var names []string
	for name, v := range p.varResult {
		if v == assignment {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// VarNameFromNumber looks up the name mapped to a positive variable number.
func (p *Problem) VarNameFromNumber(n int) (string, bool) {
	if n <= 0 {
		return "", false
	}
	name, ok := p.varToName[n]
	return name, ok
}

// VarNumberFromName looks up the signed variable number for a (possibly
// negated) variable name.
func (p *Problem) VarNumberFromName(name string) (int, error) {
	base, negated, ok := splitSign(name)
	if !ok {
		return 0, core.Newf("satproblem", "VarNumberFromName", core.KindMalformedInput, "invalid literal %q", name)
	}
	v, known := p.nameToVar[base]
	if !known {
		return 0, core.Newf("satproblem", "VarNumberFromName", core.KindNoState, "unknown variable %q", base)
	}
	if negated {
		return -v, nil
	}
	return v, nil
}

// Clauses returns the accumulated clauses with literals rendered back to
// their (possibly negated) names.
func (p *Problem) Clauses() [][]string {
	ints := p.cnf.Clauses()
	out := make([][]string, len(ints))
	for i, clause := range ints {
		names := make([]string, len(clause))
		for j, lit := range clause {
			v, neg := lit, false
			if v < 0 {
				v, neg = -v, true
			}
			name := p.varToName[v]
			if neg {
				name = "-" + name
			}
			names[j] = name
		}
		out[i] = names
	}
	return out
}

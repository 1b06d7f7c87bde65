// Package satshell re-exports the pieces most callers need to build and
// solve a named SAT problem, so a simple program can depend on this one
// package instead of reaching into basecnf/formula/satproblem directly.
package satshell

import (
	"github.com/TestudoAquatilis/sat-shell/basecnf"
	"github.com/TestudoAquatilis/sat-shell/formula"
	"github.com/TestudoAquatilis/sat-shell/satproblem"
)

// Problem is a named-variable SAT problem. See package satproblem for the
// full method set.
type Problem = satproblem.Problem

// NewProblem returns an empty Problem.
func NewProblem() *Problem {
	return satproblem.New()
}

// SolveOptions configures an external solver invocation. See package
// basecnf for field documentation.
type SolveOptions = basecnf.SolveOptions

// ParseFormula parses a formula template of integer literals and the
// operators "& | ^ == <=> => -> <= <-" (with unary "- ~ !") into an AST
// ready for ToCNF.
func ParseFormula(s string) (*formula.Node, error) {
	return formula.Parse(s)
}

// FormulaToCNF converts a parsed formula into conjunctive normal form by
// worklist rewrite, without introducing auxiliary variables.
func FormulaToCNF(n *formula.Node) [][]int {
	return formula.ToCNF(n)
}

// Command examples demonstrates the satshell API end to end: a small
// scheduling-style problem (three tasks, exactly one of them picked to run
// first) built from named clauses, a cardinality encoding, and a formula
// template, then solved against whatever solver binary is named on the
// command line.
package main

import (
	"flag"
	"fmt"
	"os"

	satshell "github.com/TestudoAquatilis/sat-shell"
)

func main() {
	solverBin := flag.String("solver", "minisat", "SAT solver binary to invoke")
	tempPrefix := flag.String("temp", "/tmp/satshell_example", "prefix for temporary solver files")
	flag.Parse()

	p := satshell.NewProblem()

	if err := p.AddClause([]string{"task_a", "task_b", "task_c"}); err != nil {
		fail(err)
	}

	if err := p.AddEncoding([]string{"task_a", "task_b", "task_c"}, "1ofn_order", 0); err != nil {
		fail(err)
	}

	// An approved task must run: approved => runnable, expressed as a
	// formula template with 1=approved, 2=runnable.
	if err := p.AddFormulaMapping("1 => 2", []string{"approved_a", "task_a"}); err != nil {
		fail(err)
	}
	if err := p.AddClause([]string{"approved_a"}); err != nil {
		fail(err)
	}

	sat, err := p.Solve(satshell.SolveOptions{
		TempPrefix: *tempPrefix,
		SolverBin:  *solverBin,
		Cleanup:    true,
	})
	if err != nil {
		fail(err)
	}
	if !sat {
		fmt.Println("unsatisfiable")
		return
	}

	chosen, err := p.VarResultList(true)
	if err != nil {
		fail(err)
	}
	fmt.Println("variables assigned true:", chosen)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

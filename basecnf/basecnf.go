// Package basecnf is the in-memory clause store: it accumulates integer
// literal clauses, emits them as DIMACS (plain or gzipped), and drives an
// external SAT solver binary over a pseudo-terminal to obtain a solution.
package basecnf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/TestudoAquatilis/sat-shell/core"
	"github.com/TestudoAquatilis/sat-shell/ptyrun"
)

// CNF is a clause store over signed integer literals, plus the most recent
// solver solution (if any). The zero value is an empty CNF, the same as
// New returns.
type CNF struct {
	maxVar   int
	clauses  [][]int
	solution []int
}

// New returns an empty CNF.
func New() *CNF {
	return &CNF{}
}

// AddClause appends a clause given as a slice of signed non-zero literals.
// An empty clause is rejected: it can never be satisfied and there is no
// use accumulating it. Adding a clause discards any existing solution,
// since it may no longer satisfy the enlarged clause set.
func (c *CNF) AddClause(lits []int) error {
	if len(lits) == 0 {
		return core.New("basecnf", "AddClause", core.KindMalformedInput, "clause has no literals")
	}

	clause := make([]int, len(lits))
	for i, l := range lits {
		if l == 0 {
			return core.New("basecnf", "AddClause", core.KindMalformedInput, "literal 0 is not a valid variable")
		}
		clause[i] = l
		if a := abs(l); a > c.maxVar {
			c.maxVar = a
		}
	}

	c.clauses = append(c.clauses, clause)
	c.solution = nil
	return nil
}

// Clauses returns the accumulated clauses. The caller must not modify the
// returned slices.
func (c *CNF) Clauses() [][]int {
	return c.clauses
}

// Solution returns the most recent satisfying assignment as signed
// literals, or nil if the problem is unsolved, unsatisfiable, or the
// solution has been cancelled.
func (c *CNF) Solution() []int {
	return c.solution
}

// CancelSolution adds a clause that blocks the current solution (the
// negation of every literal in it), so the next Solve call is forced to
// find a different assignment, and clears the stored solution. It is a
// no-op if there is no current solution.
func (c *CNF) CancelSolution() {
	if len(c.solution) == 0 {
		return
	}

	blocking := make([]int, len(c.solution))
	for i, l := range c.solution {
		blocking[i] = -l
	}

	// AddClause cannot fail here: the blocking clause is never empty
	// (len(c.solution) > 0) and never contains a zero literal.
	_ = c.AddClause(blocking)
}

// WriteDIMACS writes the clause set in plain DIMACS CNF format.
func (c *CNF) WriteDIMACS(w io.Writer) error {
	return writeDimacs(w, c.maxVar, c.clauses)
}

// WriteDIMACSGzip writes the clause set in gzip-compressed DIMACS CNF
// format.
func (c *CNF) WriteDIMACSGzip(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := writeDimacs(gz, c.maxVar, c.clauses); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func writeDimacs(w io.Writer, maxVar int, clauses [][]int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", maxVar, len(clauses)); err != nil {
		return err
	}
	for _, clause := range clauses {
		var sb strings.Builder
		for _, l := range clause {
			sb.WriteString(strconv.Itoa(l))
			sb.WriteByte(' ')
		}
		sb.WriteString("0\n")
		if _, err := bw.WriteString(sb.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SolveOptions configures an external solver run. The zero value is not a
// usable default on its own: an empty SolverBin is special-cased by Solve
// to mean "minisat", which also forces SolutionOnStdout to false (a
// mildly surprising but deliberate default).
type SolveOptions struct {
	// TempPrefix is the path prefix for temporary files; ".cnf" (or
	// ".cnf.gz"), and ".sol" are appended.
	TempPrefix string
	// SolverBin is the solver executable to invoke. Empty means
	// "minisat", and also forces SolutionOnStdout to false regardless of
	// what the caller set.
	SolverBin string
	// SolutionOnStdout: if true, the solver is assumed to print its
	// solution on stdout rather than into the .sol file, and solve
	// writes that passthrough output to the .sol file itself.
	SolutionOnStdout bool
	// Cleanup removes the temporary .cnf/.sol files after solving.
	Cleanup bool
	// Gzip writes the .cnf file gzip-compressed.
	Gzip bool
	// Echo, if non-nil, receives one "SOLVER: ..." line per line of
	// solver output, except that "v" value lines are not echoed when
	// SolutionOnStdout is in effect.
	Echo io.Writer
}

// Solve writes the clause set to a temporary DIMACS file, invokes the
// configured solver binary against it, and parses the resulting solution.
// It returns the satisfiability result; c.Solution reflects the parsed
// assignment afterward. Any I/O or subprocess failure is a KindSolverIO
// error and leaves c's clauses untouched.
func (c *CNF) Solve(opts SolveOptions) (bool, error) {
	solverBin := opts.SolverBin
	solutionOnStdout := opts.SolutionOnStdout
	if solverBin == "" {
		solverBin = "minisat"
		solutionOnStdout = false
	}
	if opts.TempPrefix == "" {
		return false, core.New("basecnf", "Solve", core.KindMalformedInput, "temp file prefix is empty")
	}

	cnfPath := opts.TempPrefix + ".cnf"
	if opts.Gzip {
		cnfPath += ".gz"
	}
	solPath := opts.TempPrefix + ".sol"

	if err := c.writeCNFFile(cnfPath, opts.Gzip); err != nil {
		return false, err
	}

	if err := runSolver(solverBin, cnfPath, solPath, solutionOnStdout, opts.Echo); err != nil {
		if opts.Cleanup {
			os.Remove(cnfPath)
		}
		return false, err
	}

	satisfiable, solution, err := readSolutionFile(solPath)
	if opts.Cleanup {
		os.Remove(cnfPath)
		os.Remove(solPath)
	}
	if err != nil {
		return false, err
	}

	c.solution = solution
	return satisfiable, nil
}

func (c *CNF) writeCNFFile(path string, gz bool) error {
	f, err := os.Create(path)
	if err != nil {
		return core.Newf("basecnf", "Solve", core.KindSolverIO, "could not open %s: %v", path, err)
	}
	defer f.Close()

	var writeErr error
	if gz {
		writeErr = c.WriteDIMACSGzip(f)
	} else {
		writeErr = c.WriteDIMACS(f)
	}
	if writeErr != nil {
		return core.Newf("basecnf", "Solve", core.KindSolverIO, "could not write %s: %v", path, writeErr)
	}
	return nil
}

// runSolver invokes solverBin against cnfPath and arranges for the
// solution to end up readable at solPath, whether the solver writes it
// there itself or prints it on stdout.
func runSolver(solverBin, cnfPath, solPath string, solutionOnStdout bool, echo io.Writer) error {
	var args []string
	var solFile *os.File

	if solutionOnStdout {
		f, err := os.Create(solPath)
		if err != nil {
			return core.Newf("basecnf", "Solve", core.KindSolverIO, "could not open %s: %v", solPath, err)
		}
		solFile = f
		defer solFile.Close()
		args = []string{solverBin, cnfPath}
	} else {
		args = []string{solverBin, cnfPath, solPath}
	}

	h, err := ptyrun.New(args)
	if err != nil {
		return core.Newf("basecnf", "Solve", core.KindSolverIO, "could not execute %s: %v", solverBin, err)
	}
	defer h.Finish()

	for {
		line, ok := h.GetLine()
		if !ok {
			break
		}

		if !solutionOnStdout {
			echoLine(echo, line)
			continue
		}

		printLine, writeLine := true, false
		if len(line) > 1 {
			switch line[0] {
			case 's':
				writeLine = true
			case 'v':
				writeLine = true
				printLine = false
			}
		}
		if printLine {
			echoLine(echo, line)
		}
		if writeLine {
			fmt.Fprintln(solFile, line[2:])
		}
	}

	return nil
}

func echoLine(w io.Writer, line string) {
	if w != nil {
		fmt.Fprintf(w, "SOLVER: %s\n", line)
	}
}

// readSolutionFile parses a .sol file: the first token is "SAT"/
// "SATISFIABLE" (satisfiable) or anything else (not satisfiable), followed
// for a satisfiable result by whitespace-separated signed literals
// terminated by a 0 or end of file.
func readSolutionFile(path string) (bool, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, nil, core.Newf("basecnf", "Solve", core.KindSolverIO, "could not open %s: %v", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		return false, nil, nil
	}
	switch sc.Text() {
	case "SAT", "SATISFIABLE":
	default:
		return false, nil, nil
	}

	var solution []int
	for sc.Scan() {
		lit, err := strconv.Atoi(sc.Text())
		if err != nil {
			break
		}
		if lit == 0 {
			break
		}
		solution = append(solution, lit)
	}

	return true, solution, nil
}

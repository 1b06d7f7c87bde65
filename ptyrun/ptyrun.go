// Package ptyrun runs a child process attached to a pseudo-terminal and
// streams its combined stdout/stderr back line by line.
//
// A pty is used instead of a plain pipe because some solver binaries only
// line-buffer their output when stdout is a terminal; with a pipe they'd
// fully buffer and getline would stall until the child exited.
package ptyrun

import (
	"bufio"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"github.com/TestudoAquatilis/sat-shell/core"
)

// Handle is a running (or finished) child process attached to a pty.
// It is not safe for concurrent use.
type Handle struct {
	cmd    *exec.Cmd
	master *os.File
	reader *bufio.Reader
	done   bool
}

// New spawns args[0] with args[1:] attached to a new pty. It fails if the
// process cannot be started; there is no retry.
func New(args []string) (*Handle, error) {
	if len(args) == 0 {
		return nil, core.New("ptyrun", "New", core.KindMalformedInput, "empty argument list")
	}

	cmd := exec.Command(args[0], args[1:]...)
	master, err := pty.Start(cmd)
	if err != nil {
		return nil, core.Newf("ptyrun", "New", core.KindSolverIO,
			"failed to start %s in pty: %v", args[0], err)
	}

	return &Handle{
		cmd:    cmd,
		master: master,
		reader: bufio.NewReader(master),
	}, nil
}

// GetLine returns the next chomped line from the child's combined
// stdout/stderr stream. ok is false exactly once, at end of stream, and
// on every call after that. A trailing partial line (no final newline)
// is still returned with ok true before end of stream is reported.
func (h *Handle) GetLine() (line string, ok bool) {
	if h.done {
		return "", false
	}

	text, err := h.reader.ReadString('\n')
	if err == nil {
		return chomp(text), true
	}

	// Read failures (EOF, or the pty slave closing on child exit) all
	// collapse to end-of-stream; the child's exit status is not
	// inspected beyond the waitpid done in Finish.
	h.done = true
	if len(text) > 0 {
		return chomp(text), true
	}
	return "", false
}

func chomp(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// Finish waits for the child to exit and releases the pty descriptor. It
// is idempotent: calling it more than once (or on a Handle whose process
// already finished) is a no-op beyond the first call.
func (h *Handle) Finish() error {
	if h == nil {
		return nil
	}
	if h.master != nil {
		h.master.Close()
		h.master = nil
	}
	if h.cmd != nil && h.cmd.Process != nil {
		// Wait reaps the child; errors here (including the common
		// "exit status N") are not solver-I/O failures, so they are
		// swallowed.
		_ = h.cmd.Wait()
		h.cmd = nil
	}
	return nil
}

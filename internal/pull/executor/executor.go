// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"mvdan.cc/sh/v3/shell"
)

// Result holds the outcome of one subprocess invocation.
type Result struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// ShellRunner executes shell command lines via os/exec, fully capturing
// output before returning and optionally streaming it live.
type ShellRunner struct {
	live   bool
	stdout io.Writer
	stderr io.Writer
}

// NewShellRunner creates a runner. With live set, child output is streamed
// to stdout/stderr while still being captured.
func NewShellRunner(live bool) *ShellRunner {
	return &ShellRunner{
		live:   live,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects live streaming to the given writers.
func (r *ShellRunner) WithOutput(stdout, stderr io.Writer) *ShellRunner {
	r.stdout = stdout
	r.stderr = stderr
	return r
}

// Run splits cmdline with shell word rules, runs it to completion and
// returns the captured output and exit status. A non-zero exit is reported
// through Result, not as an error; the error return covers failures to run
// the command at all.
func (r *ShellRunner) Run(cmdline string) (*Result, error) {
	fields, err := shell.Fields(cmdline, nil)
	if err != nil {
		return nil, fmt.Errorf("error parsing command line: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command line")
	}

	cmd := exec.Command(fields[0], fields[1:]...)

	var stdout, stderr bytes.Buffer
	if r.live {
		cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
		cmd.Stderr = io.MultiWriter(&stderr, r.stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	// Password prompts from the child need the terminal.
	cmd.Stdin = os.Stdin

	err = cmd.Run()

	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitStatus = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("error running command: %w", err)
	}

	return result, nil
}

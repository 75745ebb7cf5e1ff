// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Reporter is the single output surface for the program. Regular program
// output (banners, status lines) goes to the display writer; warnings,
// errors and debug traces go through the structured logger. Components
// receive a Reporter explicitly so tests can capture everything emitted.
type Reporter struct {
	out       io.Writer
	logger    *log.Logger
	verbosity int
}

// New creates a Reporter writing display output to out and diagnostics to
// errOut. Verbosity 0 shows warnings and errors only; 1 and above enables
// debug output.
func New(out, errOut io.Writer, verbosity int) *Reporter {
	logger := log.NewWithOptions(errOut, log.Options{
		Prefix: "pullup",
	})
	if verbosity > 0 {
		logger.SetLevel(log.DebugLevel)
	}

	return &Reporter{
		out:       out,
		logger:    logger,
		verbosity: verbosity,
	}
}

// NewStandard creates a Reporter bound to stdout/stderr.
func NewStandard(verbosity int) *Reporter {
	return New(os.Stdout, os.Stderr, verbosity)
}

// Verbosity returns the configured verbosity level.
func (r *Reporter) Verbosity() int {
	return r.verbosity
}

// Display writes a regular output line.
func (r *Reporter) Display(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Warning emits a non-fatal warning.
func (r *Reporter) Warning(format string, args ...any) {
	r.logger.Warnf(format, args...)
}

// Error emits a non-fatal error.
func (r *Reporter) Error(format string, args ...any) {
	r.logger.Errorf(format, args...)
}

// Debug emits a trace line, visible with -v.
func (r *Reporter) Debug(format string, args ...any) {
	r.logger.Debugf(format, args...)
}

// V emits a trace line only at or above the given verbosity level. Used
// for noisy traces like full command lines (-vvvv).
func (r *Reporter) V(level int, format string, args ...any) {
	if r.verbosity >= level {
		r.logger.Debugf(format, args...)
	}
}

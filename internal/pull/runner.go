// SPDX-License-Identifier: Apache-2.0

package pull

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/steadops/pullup/internal/core/config"
	"github.com/steadops/pullup/internal/core/options"
	"github.com/steadops/pullup/internal/core/repoargs"
	"github.com/steadops/pullup/internal/pull/executor"
	"github.com/steadops/pullup/internal/report"
)

// changedMarker is the substring of the checkout module's output that
// indicates the working copy was updated.
const changedMarker = `"changed": true`

// Executor runs one external command line to completion.
type Executor interface {
	Run(cmdline string) (*executor.Result, error)
}

// Runner drives a single pull run: repository checkout, playbook selection
// and playbook execution, strictly in sequence.
type Runner struct {
	opts *options.Options
	cfg  *config.Config
	rep  *report.Reporter
	exec Executor

	fqdn string
	node string

	// overridable for tests
	sleep     func(time.Duration)
	chdir     func(string) error
	removeAll func(string) error
}

// NewRunner creates a Runner bound to the resolved options.
func NewRunner(opts *options.Options, cfg *config.Config, rep *report.Reporter, exec Executor) *Runner {
	return &Runner{
		opts:      opts,
		cfg:       cfg,
		rep:       rep,
		exec:      exec,
		fqdn:      FQDN(),
		node:      Node(),
		sleep:     time.Sleep,
		chdir:     os.Chdir,
		removeAll: os.RemoveAll,
	}
}

// Run executes the pull sequence and returns the process exit code. A
// checkout failure without --force returns the checkout's exit code; an
// unchanged repository with --only-if-changed returns 0 without running the
// playbook; otherwise the playbook run's exit code is returned. Errors are
// configuration problems that prevented either subprocess from deciding
// the outcome.
func (r *Runner) Run() (int, error) {
	r.rep.Display("Starting pull run at %s", time.Now().Format("2006-01-02 15:04:05"))
	r.rep.Display(strings.Join(os.Args, " "))

	limit := LimitOptions(r.fqdn, r.node)

	baseOpts := "-c local"
	if v := r.opts.Verbosity; v > 0 {
		baseOpts += " -" + strings.Repeat("v", v)
	}

	// The inventory passed on the command line may not have been checked
	// out yet, so fall back to localhost for the checkout step.
	invOpts := r.inventoryOpts()
	if invOpts == "" {
		invOpts = " -i localhost, "
	}

	repoargs.Reconcile(r.opts.ScmArgs, r.opts.RepoFlags(), r.rep)

	cmd := fmt.Sprintf("%s%s%s -m %s -a %s all -l %s",
		r.cfg.AnsibleCommand(), invOpts, baseOpts, r.opts.ModuleName,
		repoargs.Quote(r.opts.ScmArgs.String()), repoargs.Quote(limit))
	for _, ev := range r.opts.ExtraVars {
		cmd += " -e " + repoargs.Quote(ev)
	}

	if r.opts.Sleep > 0 {
		r.rep.Display("Sleeping for %d seconds...", r.opts.Sleep)
		r.sleep(time.Duration(r.opts.Sleep) * time.Second)
	}

	r.rep.Debug("running checkout module against the local node")
	r.rep.V(4, "EXEC: %s", cmd)
	res, err := r.exec.Run(cmd)
	if err != nil {
		return 1, fmt.Errorf("error running checkout command: %w", err)
	}

	if res.ExitStatus != 0 {
		if !r.opts.Force {
			return res.ExitStatus, nil
		}
		r.rep.Warning("Unable to update repository. Continuing with (forced) run of playbook.")
	} else if r.opts.IfChanged && !bytes.Contains(res.Stdout, []byte(changedMarker)) {
		r.rep.Display("Repository has not changed, quitting.")
		return 0, nil
	}

	playbook := SelectPlaybook(r.rep, r.opts.Dest, r.opts.Playbook, r.fqdn)
	if playbook == "" {
		return 1, fmt.Errorf("could not find a playbook to run")
	}

	cmd = fmt.Sprintf("%s %s %s", r.cfg.PlaybookCommand(), baseOpts, repoargs.Quote(playbook))
	for _, file := range r.opts.VaultPasswordFiles {
		cmd += " --vault-password-file=" + repoargs.Quote(file)
	}
	for _, id := range r.opts.VaultIDs {
		cmd += " --vault-id=" + repoargs.Quote(id)
	}
	for _, ev := range r.opts.ExtraVars {
		cmd += " -e " + repoargs.Quote(ev)
	}
	if r.opts.AskBecomePass {
		cmd += " --ask-become-pass"
	}
	if len(r.opts.SkipTags) > 0 {
		cmd += " --skip-tags " + repoargs.Quote(strings.Join(r.opts.SkipTags, ","))
	}
	if len(r.opts.Tags) > 0 {
		cmd += " -t " + repoargs.Quote(strings.Join(r.opts.Tags, ","))
	}
	if r.opts.Subset != "" {
		cmd += " -l " + repoargs.Quote(r.opts.Subset)
	} else {
		cmd += " -l " + repoargs.Quote(limit)
	}
	if r.opts.Check {
		cmd += " -C"
	}
	if r.opts.Diff {
		cmd += " -D"
	}

	if err := r.chdir(r.opts.Dest); err != nil {
		return 1, fmt.Errorf("error changing to checkout directory: %w", err)
	}

	// Redo inventory options as new files might exist now.
	if invOpts := r.inventoryOpts(); invOpts != "" {
		cmd += invOpts
	}

	r.rep.Debug("running playbook against the local node")
	r.rep.V(4, "EXEC: %s", cmd)
	res, err = r.exec.Run(cmd)
	if err != nil {
		return 1, fmt.Errorf("error running playbook command: %w", err)
	}

	if r.opts.Purge {
		// Move out of the tree before deleting it.
		if err := r.chdir("/"); err != nil {
			r.rep.Error("Failed to leave %s: %v", r.opts.Dest, err)
		}
		if err := r.removeAll(r.opts.Dest); err != nil {
			r.rep.Error("Failed to remove %s: %v", r.opts.Dest, err)
		}
	}

	return res.ExitStatus, nil
}

// inventoryOpts builds the -i fragment from the inventory sources that are
// usable right now: inline host lists and files that exist on disk.
func (r *Runner) inventoryOpts() string {
	var sb strings.Builder
	for _, inv := range r.opts.Inventory {
		if strings.Contains(inv, ",") {
			sb.WriteString(" -i " + repoargs.Quote(inv) + " ")
		} else if _, err := os.Stat(inv); err == nil {
			sb.WriteString(" -i " + inv + " ")
		}
	}
	return sb.String()
}

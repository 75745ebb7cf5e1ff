// SPDX-License-Identifier: Apache-2.0

package options

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/steadops/pullup/internal/core/config"
	"github.com/steadops/pullup/internal/core/repoargs"
)

const (
	// DefaultModuleName is the repository module used when -m is not given.
	DefaultModuleName = "git"
)

// RepoChoices lists the repository modules accepted by -m/--module-name.
// Only git and subversion get dedicated argument defaulting; hg and bzr are
// forwarded as-is.
var RepoChoices = []string{"git", "subversion", "hg", "bzr"}

// Options is the resolved configuration for one pull run. It is built once
// from command-line input and is immutable afterwards, except for ScmArgs
// which is reconciled in place at execution time.
type Options struct {
	URL        string
	Dest       string
	ModuleName string
	Checkout   string
	ModuleArgs string

	// SleepRaw is the unparsed -s/--sleep value; Sleep is the randomized
	// number of seconds resolved from it.
	SleepRaw string
	Sleep    int

	Purge           bool
	IfChanged       bool
	Force           bool
	FullClone       bool
	Clean           bool
	TrackSubmodules bool
	VerifyCommit    bool
	AcceptHostKey   bool
	Check           bool
	Diff            bool

	ExtraVars          []string
	Tags               []string
	SkipTags           []string
	Inventory          []string
	VaultPasswordFiles []string
	VaultIDs           []string
	Subset             string
	PrivateKeyFile     string
	AskBecomePass      bool
	Verbosity          int

	// Playbook is the optional positional argument, relative to Dest.
	Playbook string

	// ScmArgs is the generic argument map parsed from ModuleArgs.
	ScmArgs repoargs.Map
}

// Resolve validates the raw option values and fills in derived fields. All
// configuration errors surface here, before anything externally visible
// happens. fqdn is the node's fully qualified domain name, used for the
// default checkout directory.
func (o *Options) Resolve(fqdn string) error {
	if o.ModuleName == "" {
		o.ModuleName = DefaultModuleName
	}

	if o.Dest == "" {
		// Hostname dependent directory, in case of $HOME on NFS.
		o.Dest = filepath.Join(config.DefaultCheckoutBase, fqdn)
	}
	o.Dest = os.ExpandEnv(config.ExpandPathWithTilde(o.Dest))

	if info, err := os.Stat(o.Dest); err == nil && !info.IsDir() {
		return fmt.Errorf("%s is not a valid or accessible directory.", o.Dest)
	}

	if o.SleepRaw != "" {
		secs, err := strconv.Atoi(o.SleepRaw)
		if err != nil || secs < 0 {
			return fmt.Errorf("%s is not a number.", o.SleepRaw)
		}
		o.Sleep = rand.IntN(secs + 1)
	}

	if o.URL == "" {
		return fmt.Errorf("URL for repository not specified, use -h for help")
	}

	if !slices.Contains(RepoChoices, o.ModuleName) {
		return fmt.Errorf("Unsupported repo module %s, choices are %s", o.ModuleName, strings.Join(RepoChoices, ","))
	}

	scmArgs, err := repoargs.Parse(o.ModuleArgs)
	if err != nil {
		return err
	}
	if err := repoargs.CheckReserved(scmArgs, o.ModuleName, o.URL); err != nil {
		return err
	}
	o.ScmArgs = scmArgs

	return nil
}

// RepoFlags returns the dedicated flags that take part in module-argument
// reconciliation.
func (o *Options) RepoFlags() repoargs.Flags {
	return repoargs.Flags{
		Module:          o.ModuleName,
		URL:             o.URL,
		Dest:            o.Dest,
		Checkout:        o.Checkout,
		Clean:           o.Clean,
		FullClone:       o.FullClone,
		AcceptHostKey:   o.AcceptHostKey,
		PrivateKeyFile:  o.PrivateKeyFile,
		TrackSubmodules: o.TrackSubmodules,
		VerifyCommit:    o.VerifyCommit,
	}
}

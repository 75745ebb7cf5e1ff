// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/steadops/pullup/internal/core/config"
	"github.com/steadops/pullup/internal/core/options"
	"github.com/steadops/pullup/internal/pull"
	"github.com/steadops/pullup/internal/pull/executor"
	"github.com/steadops/pullup/internal/report"
	"github.com/steadops/pullup/internal/version"

	"github.com/spf13/cobra"
)

var (
	// Configuration path
	configFile string

	// Raw option values bound to flags
	opts options.Options

	// --key-file alias of --private-key
	keyFile string

	// Exit code of the completed run
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "pullup -U <repository> [flags] [playbook.yml]",
	Short: "Pull playbooks from a VCS repo and run them on the local host",
	Long: `Pullup sets a managed node up to update itself: it checks a playbook
repository out of version control with the configured repository module,
picks a playbook matching the node's hostname (falling back to local.yml)
and runs it against localhost. Run it from a cron job or a systemd timer to
invert the usual push architecture into a pull one.`,
	Version: fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
	Args:    cobra.MaximumNArgs(1),
	// main prints the error; avoid printing it twice.
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		// Config file values fill in flags the user didn't give.
		if opts.URL == "" {
			opts.URL = cfg.URL
		}
		if opts.Dest == "" {
			opts.Dest = cfg.Directory
		}
		if opts.ModuleName == "" {
			opts.ModuleName = cfg.ModuleName
		}
		if opts.Checkout == "" {
			opts.Checkout = cfg.Checkout
		}
		if opts.PrivateKeyFile == "" {
			opts.PrivateKeyFile = keyFile
		}
		if len(args) > 0 {
			opts.Playbook = args[0]
		}

		if err := opts.Resolve(pull.FQDN()); err != nil {
			return err
		}

		// Configuration is settled; nothing past this point may error
		// before a subprocess has run.
		cmd.SilenceUsage = true

		rep := report.NewStandard(opts.Verbosity)
		runner := pull.NewRunner(&opts, cfg, rep, executor.NewShellRunner(true))

		rc, err := runner.Run()
		if err != nil {
			return err
		}
		exitCode = rc
		return nil
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() (int, error) {
	if err := rootCmd.Execute(); err != nil {
		return 2, err
	}
	return exitCode, nil
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&opts.URL, "url", "U", "", "URL of the playbook repository")
	flags.StringVarP(&opts.Dest, "directory", "d", "", "directory to checkout repository to")
	flags.StringVarP(&opts.ModuleName, "module-name", "m", "", fmt.Sprintf("repository module used to check out the repo, one of %v (default %q)", options.RepoChoices, options.DefaultModuleName))
	flags.StringVarP(&opts.ModuleArgs, "module-args", "a", "", "repository module arguments as key=value pairs")
	flags.StringVarP(&opts.Checkout, "checkout", "C", "", "branch/tag/commit to checkout (deprecated, use --module-args 'version=<checkout>' or --module-args 'revision=<checkout>')")
	flags.StringVarP(&opts.SleepRaw, "sleep", "s", "", "sleep for a random interval between 0 and n seconds before starting, to disperse repository requests")
	flags.BoolVarP(&opts.IfChanged, "only-if-changed", "o", false, "only run the playbook if the repository has been updated")
	flags.BoolVarP(&opts.Force, "force", "f", false, "run the playbook even if the repository could not be updated")
	flags.BoolVar(&opts.Purge, "purge", false, "purge checkout after playbook run")
	flags.BoolVar(&opts.FullClone, "full", false, "do a full clone instead of a shallow one (deprecated, use --module-args 'depth=0' or 'export=no')")
	flags.BoolVar(&opts.Clean, "clean", false, "discard modified files in the working repository")
	flags.BoolVar(&opts.TrackSubmodules, "track-subs", false, "submodules will track the latest changes (deprecated, use --module-args 'track_submodules=yes')")
	flags.BoolVar(&opts.VerifyCommit, "verify-commit", false, "verify the GPG signature of the checked out commit (deprecated, use --module-args 'verify_commit=yes')")
	flags.BoolVar(&opts.AcceptHostKey, "accept-host-key", false, "add the host key of the repo url if not already added (deprecated, use --module-args 'accept_hostkey=yes')")

	// --check gets no shorthand; -C belongs to --checkout.
	flags.BoolVar(&opts.Check, "check", false, "don't make any changes; instead, try to predict some of the changes that may occur")
	flags.BoolVar(&opts.Diff, "diff", false, "when changing files and templates, show the differences in those files")

	flags.StringArrayVarP(&opts.Inventory, "inventory", "i", nil, "inventory host path or comma separated host list")
	flags.StringArrayVarP(&opts.ExtraVars, "extra-vars", "e", nil, "set additional variables as key=value")
	flags.StringArrayVarP(&opts.Tags, "tags", "t", nil, "only run plays and tasks tagged with these values")
	flags.StringArrayVar(&opts.SkipTags, "skip-tags", nil, "only run plays and tasks whose tags do not match these values")
	flags.StringVarP(&opts.Subset, "limit", "l", "", "further limit selected hosts to an additional pattern")
	flags.StringArrayVar(&opts.VaultPasswordFiles, "vault-password-file", nil, "vault password file")
	flags.StringArrayVar(&opts.VaultIDs, "vault-id", nil, "the vault identity to use")
	flags.BoolVarP(&opts.AskBecomePass, "ask-become-pass", "K", false, "ask for privilege escalation password")
	flags.StringVar(&opts.PrivateKeyFile, "private-key", "", "use this file to authenticate the connection")
	flags.StringVar(&keyFile, "key-file", "", "use this file to authenticate the connection (alias of --private-key)")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "increase output verbosity, repeatable")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ~/.pullup/config.yaml)")
}

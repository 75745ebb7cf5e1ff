// SPDX-License-Identifier: Apache-2.0

package repoargs_test

import (
	"bytes"
	"testing"

	"github.com/steadops/pullup/internal/core/repoargs"
	"github.com/steadops/pullup/internal/report"
	"github.com/stretchr/testify/assert"
)

func baseFlags(module string) repoargs.Flags {
	return repoargs.Flags{
		Module: module,
		URL:    "https://example.com/site.git",
		Dest:   "/srv/pull",
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name         string
		m            repoargs.Map
		flags        func() repoargs.Flags
		want         repoargs.Map
		wantWarnings []string
	}{
		{
			name:  "git base keys and shallow default",
			m:     repoargs.Map{},
			flags: func() repoargs.Flags { return baseFlags("git") },
			want: repoargs.Map{
				"dest":  "/srv/pull",
				"name":  "https://example.com/site.git",
				"depth": "1",
			},
		},
		{
			name:  "subversion base keys and export default",
			m:     repoargs.Map{},
			flags: func() repoargs.Flags { return baseFlags("subversion") },
			want: repoargs.Map{
				"dest":   "/srv/pull",
				"repo":   "https://example.com/site.git",
				"export": "yes",
			},
		},
		{
			name:  "hg gets no module defaults",
			m:     repoargs.Map{},
			flags: func() repoargs.Flags { return baseFlags("hg") },
			want: repoargs.Map{
				"dest": "/srv/pull",
				"repo": "https://example.com/site.git",
			},
		},
		{
			name:  "explicit depth is kept",
			m:     repoargs.Map{"depth": "7"},
			flags: func() repoargs.Flags { return baseFlags("git") },
			want: repoargs.Map{
				"dest":  "/srv/pull",
				"name":  "https://example.com/site.git",
				"depth": "7",
			},
		},
		{
			name: "full clone suppresses depth default",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.FullClone = true
				return f
			},
			want: repoargs.Map{
				"dest": "/srv/pull",
				"name": "https://example.com/site.git",
			},
		},
		{
			name: "full clone removes explicit depth with warning",
			m:    repoargs.Map{"depth": "7"},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.FullClone = true
				return f
			},
			want: repoargs.Map{
				"dest": "/srv/pull",
				"name": "https://example.com/site.git",
			},
			wantWarnings: []string{
				"--module-args 'depth' argument was provided but is being removed by --full for backward compatibility",
			},
		},
		{
			name: "full clone removes explicit export with warning",
			m:    repoargs.Map{"export": "no"},
			flags: func() repoargs.Flags {
				f := baseFlags("subversion")
				f.FullClone = true
				return f
			},
			want: repoargs.Map{
				"dest": "/srv/pull",
				"repo": "https://example.com/site.git",
			},
			wantWarnings: []string{
				"--module-args 'export' argument was provided but is being removed by --full for backward compatibility",
			},
		},
		{
			name: "checkout maps to version for git",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.Checkout = "stable"
				return f
			},
			want: repoargs.Map{
				"dest":    "/srv/pull",
				"name":    "https://example.com/site.git",
				"depth":   "1",
				"version": "stable",
			},
		},
		{
			name: "checkout maps to revision for hg",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("hg")
				f.Checkout = "tip"
				return f
			},
			want: repoargs.Map{
				"dest":     "/srv/pull",
				"repo":     "https://example.com/site.git",
				"revision": "tip",
			},
		},
		{
			name: "checkout overrides version with warning",
			m:    repoargs.Map{"version": "main"},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.Checkout = "stable"
				return f
			},
			want: repoargs.Map{
				"dest":    "/srv/pull",
				"name":    "https://example.com/site.git",
				"depth":   "1",
				"version": "stable",
			},
			wantWarnings: []string{
				"--module-args 'version' argument was provided but is being overridden by deprecated -C or --checkout for backward compatibility",
			},
		},
		{
			name: "clean forces the checkout",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.Clean = true
				return f
			},
			want: repoargs.Map{
				"dest":  "/srv/pull",
				"name":  "https://example.com/site.git",
				"depth": "1",
				"force": "yes",
			},
		},
		{
			name: "accept host key overrides with warning",
			m:    repoargs.Map{"accept_hostkey": "no"},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.AcceptHostKey = true
				return f
			},
			want: repoargs.Map{
				"dest":           "/srv/pull",
				"name":           "https://example.com/site.git",
				"depth":          "1",
				"accept_hostkey": "yes",
			},
			wantWarnings: []string{
				"--module-args 'accept_hostkey' argument was provided but is being overridden by deprecated --accept-host-key for backward compatibility",
			},
		},
		{
			name: "private key file overrides key_file with warning",
			m:    repoargs.Map{"key_file": "/etc/old_key"},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.PrivateKeyFile = "/home/deploy/.ssh/id_ed25519"
				return f
			},
			want: repoargs.Map{
				"dest":     "/srv/pull",
				"name":     "https://example.com/site.git",
				"depth":    "1",
				"key_file": "/home/deploy/.ssh/id_ed25519",
			},
			wantWarnings: []string{
				"--module-args 'key_file' argument was provided but is being overridden by --key-file or --private-key for backward compatibility",
			},
		},
		{
			name: "track submodules and verify commit",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("git")
				f.TrackSubmodules = true
				f.VerifyCommit = true
				return f
			},
			want: repoargs.Map{
				"dest":             "/srv/pull",
				"name":             "https://example.com/site.git",
				"depth":            "1",
				"track_submodules": "yes",
				"verify_commit":    "yes",
			},
		},
		{
			name: "git only flags ignored for subversion",
			m:    repoargs.Map{},
			flags: func() repoargs.Flags {
				f := baseFlags("subversion")
				f.AcceptHostKey = true
				f.TrackSubmodules = true
				f.VerifyCommit = true
				return f
			},
			want: repoargs.Map{
				"dest":   "/srv/pull",
				"repo":   "https://example.com/site.git",
				"export": "yes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, diag bytes.Buffer
			rep := report.New(&out, &diag, 0)

			repoargs.Reconcile(tt.m, tt.flags(), rep)

			assert.Equal(t, tt.want, tt.m)
			for _, warning := range tt.wantWarnings {
				assert.Contains(t, diag.String(), warning)
			}
			if len(tt.wantWarnings) == 0 {
				assert.Empty(t, diag.String())
			}
		})
	}
}

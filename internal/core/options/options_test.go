// SPDX-License-Identifier: Apache-2.0

package options_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steadops/pullup/internal/core/options"
	"github.com/steadops/pullup/internal/core/repoargs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFQDN = "node1.example.com"

func validOptions() *options.Options {
	return &options.Options{
		URL:  "https://example.com/site.git",
		Dest: filepath.Join(os.TempDir(), "pullup-options-test"),
	}
}

func TestResolveDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PULLUP_HOME", home)

	o := &options.Options{URL: "https://example.com/site.git"}
	require.NoError(t, o.Resolve(testFQDN))

	assert.Equal(t, filepath.Join(home, ".ansible", "pull", testFQDN), o.Dest)
	assert.Equal(t, "git", o.ModuleName)
	assert.Equal(t, repoargs.Map{}, o.ScmArgs)
	assert.Zero(t, o.Sleep)
}

func TestResolveDestExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PULLUP_HOME", home)
	t.Setenv("PULLUP_TEST_SUBDIR", "checkouts")

	o := validOptions()
	o.Dest = "~/$PULLUP_TEST_SUBDIR/site"
	require.NoError(t, o.Resolve(testFQDN))

	assert.Equal(t, filepath.Join(home, "checkouts", "site"), o.Dest)
}

func TestResolveDestMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	o := validOptions()
	o.Dest = file

	err := o.Resolve(testFQDN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a valid or accessible directory")
}

func TestResolveURLRequired(t *testing.T) {
	o := validOptions()
	o.URL = ""

	err := o.Resolve(testFQDN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL for repository not specified")
}

func TestResolveModuleName(t *testing.T) {
	for _, module := range options.RepoChoices {
		o := validOptions()
		o.ModuleName = module
		assert.NoError(t, o.Resolve(testFQDN), "module %s should be accepted", module)
	}

	o := validOptions()
	o.ModuleName = "cvs"
	err := o.Resolve(testFQDN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported repo module cvs")
	assert.Contains(t, err.Error(), "git,subversion,hg,bzr")
}

func TestResolveSleep(t *testing.T) {
	for _, bad := range []string{"ten", "1.5", "-3", ""} {
		o := validOptions()
		o.SleepRaw = bad
		err := o.Resolve(testFQDN)
		if bad == "" {
			assert.NoError(t, err)
			continue
		}
		require.Error(t, err, "sleep %q should be rejected", bad)
		assert.Contains(t, err.Error(), "is not a number")
	}

	// The resolved value is a random draw in [0, N].
	for i := 0; i < 50; i++ {
		o := validOptions()
		o.SleepRaw = "5"
		require.NoError(t, o.Resolve(testFQDN))
		assert.GreaterOrEqual(t, o.Sleep, 0)
		assert.LessOrEqual(t, o.Sleep, 5)
	}

	o := validOptions()
	o.SleepRaw = "0"
	require.NoError(t, o.Resolve(testFQDN))
	assert.Zero(t, o.Sleep)
}

func TestResolveReservedKeys(t *testing.T) {
	o := validOptions()
	o.ModuleArgs = "dest=/anywhere"
	err := o.Resolve(testFQDN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please use -d or --directory instead")

	o = validOptions()
	o.ModuleArgs = "name=https://example.com/other.git"
	err = o.Resolve(testFQDN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please use -U or --url instead")

	o = validOptions()
	o.ModuleArgs = "name=" + o.URL
	require.NoError(t, o.Resolve(testFQDN))
	assert.Equal(t, o.URL, o.ScmArgs["name"])
}

func TestResolveModuleArgs(t *testing.T) {
	o := validOptions()
	o.ModuleArgs = "version='release candidate' umask=022"
	require.NoError(t, o.Resolve(testFQDN))
	assert.Equal(t, repoargs.Map{"version": "release candidate", "umask": "022"}, o.ScmArgs)

	o = validOptions()
	o.ModuleArgs = "notakeyvalue"
	assert.Error(t, o.Resolve(testFQDN))
}

func TestRepoFlags(t *testing.T) {
	o := validOptions()
	o.ModuleName = "git"
	o.Checkout = "stable"
	o.Clean = true
	o.FullClone = true
	o.PrivateKeyFile = "/home/deploy/.ssh/id_ed25519"
	require.NoError(t, o.Resolve(testFQDN))

	f := o.RepoFlags()
	assert.Equal(t, "git", f.Module)
	assert.Equal(t, o.URL, f.URL)
	assert.Equal(t, o.Dest, f.Dest)
	assert.Equal(t, "stable", f.Checkout)
	assert.True(t, f.Clean)
	assert.True(t, f.FullClone)
	assert.Equal(t, "/home/deploy/.ssh/id_ed25519", f.PrivateKeyFile)
}

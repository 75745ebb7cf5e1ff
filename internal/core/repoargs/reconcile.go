// SPDX-License-Identifier: Apache-2.0

package repoargs

import (
	"slices"

	"github.com/steadops/pullup/internal/report"
)

// Flags captures the dedicated command-line flags that participate in
// reconciliation with the generic argument map. Most of them are legacy
// spellings of module arguments and override the map with a deprecation
// warning when both are given.
type Flags struct {
	Module          string
	URL             string
	Dest            string
	Checkout        string
	Clean           bool
	FullClone       bool
	AcceptHostKey   bool
	PrivateKeyFile  string
	TrackSubmodules bool
	VerifyCommit    bool
}

type ruleKind int

const (
	// set the key unconditionally, no warning
	kindSet ruleKind = iota
	// set the key, warning when it was already present in the map
	kindOverride
	// set the key only when absent from the map
	kindDefault
	// delete the key, warning when it was present
	kindRemove
)

// rule describes one reconciliation step. Rules are applied in declaration
// order so precedence stays auditable: base identity keys first, then the
// legacy flag overrides, then per-module defaulting.
type rule struct {
	modules []string               // applicable modules; nil means any
	when    func(f Flags) bool     // nil means always
	key     func(f Flags) string   // target map key
	value   func(f Flags) string   // new value; unused for kindRemove
	kind    ruleKind
	label   string // flag wording used in the warning text
}

func literal(s string) func(Flags) string {
	return func(Flags) string { return s }
}

var rules = []rule{
	{
		key:   literal("dest"),
		value: func(f Flags) string { return f.Dest },
		kind:  kindSet,
	},
	{
		key:   func(f Flags) string { return IdentityKey(f.Module) },
		value: func(f Flags) string { return f.URL },
		kind:  kindSet,
	},
	{
		when:  func(f Flags) bool { return f.Checkout != "" },
		key:   func(f Flags) string { return CheckoutKey(f.Module) },
		value: func(f Flags) string { return f.Checkout },
		kind:  kindOverride,
		label: "deprecated -C or --checkout",
	},
	{
		when:  func(f Flags) bool { return f.Clean },
		key:   literal("force"),
		value: literal("yes"),
		kind:  kindSet,
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return f.AcceptHostKey },
		key:     literal("accept_hostkey"),
		value:   literal("yes"),
		kind:    kindOverride,
		label:   "deprecated --accept-host-key",
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return !f.FullClone },
		key:     literal("depth"),
		value:   literal("1"),
		kind:    kindDefault,
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return f.FullClone },
		key:     literal("depth"),
		kind:    kindRemove,
		label:   "--full",
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return f.PrivateKeyFile != "" },
		key:     literal("key_file"),
		value:   func(f Flags) string { return f.PrivateKeyFile },
		kind:    kindOverride,
		label:   "--key-file or --private-key",
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return f.TrackSubmodules },
		key:     literal("track_submodules"),
		value:   literal("yes"),
		kind:    kindOverride,
		label:   "deprecated --track-subs",
	},
	{
		modules: []string{"git"},
		when:    func(f Flags) bool { return f.VerifyCommit },
		key:     literal("verify_commit"),
		value:   literal("yes"),
		kind:    kindOverride,
		label:   "deprecated --verify-commit",
	},
	{
		modules: []string{"subversion"},
		when:    func(f Flags) bool { return !f.FullClone },
		key:     literal("export"),
		value:   literal("yes"),
		kind:    kindDefault,
	},
	{
		modules: []string{"subversion"},
		when:    func(f Flags) bool { return f.FullClone },
		key:     literal("export"),
		kind:    kindRemove,
		label:   "--full",
	},
}

// Reconcile applies the legacy-flag rules to the map in place. An explicit
// legacy flag always wins over a same-purpose map entry; doing so emits a
// deprecation warning naming both sides.
func Reconcile(m Map, f Flags, rep *report.Reporter) {
	for _, r := range rules {
		if r.modules != nil && !slices.Contains(r.modules, f.Module) {
			continue
		}
		if r.when != nil && !r.when(f) {
			continue
		}

		key := r.key(f)
		_, present := m[key]

		switch r.kind {
		case kindSet:
			m[key] = r.value(f)
		case kindOverride:
			if present {
				rep.Warning("--module-args '%s' argument was provided but is being overridden by %s for backward compatibility", key, r.label)
			}
			m[key] = r.value(f)
		case kindDefault:
			if !present {
				m[key] = r.value(f)
			}
		case kindRemove:
			if present {
				rep.Warning("--module-args '%s' argument was provided but is being removed by %s for backward compatibility", key, r.label)
				delete(m, key)
			}
		}
	}
}

// SPDX-License-Identifier: Apache-2.0

package repoargs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Map holds the free-form key=value arguments forwarded to the repository
// module. It is mutated in place while legacy flags are reconciled against
// it.
type Map map[string]string

// Parse splits a module-args string into a Map. Values may be quoted with
// shell syntax ("key='a b'").
func Parse(s string) (Map, error) {
	m := Map{}
	if strings.TrimSpace(s) == "" {
		return m, nil
	}

	fields, err := shell.Fields(s, nil)
	if err != nil {
		return nil, fmt.Errorf("error parsing module arguments: %w", err)
	}

	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("module arguments must be key=value pairs, got '%s'", field)
		}
		m[key] = value
	}

	return m, nil
}

// String serializes the map as a shell-safe argument string, each value
// individually quoted. Keys are emitted in sorted order so the resulting
// command line is stable.
func (m Map) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+Quote(m[k]))
	}

	return strings.Join(parts, " ")
}

// Quote returns s quoted for safe use as a single shell word.
func Quote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Control bytes cannot be represented; fall back to Go quoting.
		return strconv.Quote(s)
	}
	return quoted
}

// IdentityKey returns the module argument naming the repository for the
// given module. The bzr/git family uses 'name', the hg/subversion family
// uses 'repo'; the distinction is part of the module contract and must not
// be collapsed.
func IdentityKey(module string) string {
	switch module {
	case "bzr", "git":
		return "name"
	default:
		return "repo"
	}
}

// CheckoutKey returns the module argument naming the branch/tag/revision
// to check out for the given module.
func CheckoutKey(module string) string {
	switch module {
	case "bzr", "git":
		return "version"
	default:
		return "revision"
	}
}

// CheckReserved rejects module arguments that collide with dedicated
// flags. The destination key is disallowed outright; the repository
// identity key only when it disagrees with the --url flag.
func CheckReserved(m Map, module, url string) error {
	if _, ok := m["dest"]; ok {
		return fmt.Errorf("--module-args 'dest=<repo destination>' cannot be used, please use -d or --directory instead")
	}

	key := IdentityKey(module)
	if v, ok := m[key]; ok && v != url {
		return fmt.Errorf("--module-args '%s=<repo URL>' cannot be used, please use -U or --url instead", key)
	}

	return nil
}

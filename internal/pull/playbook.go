// SPDX-License-Identifier: Apache-2.0

package pull

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/steadops/pullup/internal/report"
)

// DefaultPlaybook is the last-resort playbook name tried during selection.
const DefaultPlaybook = "local.yml"

// playbook probe verdicts
const (
	playbookOK = iota
	playbookMissing
	playbookUnreadable
)

var playbookErrors = map[int]string{
	playbookMissing:    "File does not exist",
	playbookUnreadable: "File is not readable",
}

// tryPlaybook checks that the file at path exists and is readable.
func tryPlaybook(path string) int {
	if _, err := os.Stat(path); err != nil {
		return playbookMissing
	}
	f, err := os.Open(path)
	if err != nil {
		return playbookUnreadable
	}
	f.Close()
	return playbookOK
}

// SelectPlaybook returns the playbook to run from the checkout at dest, or
// "" when none qualifies. An explicit playbook argument is tried on its
// own; otherwise candidates derived from the node's name are tried in
// order: <fqdn>.yml, <short hostname>.yml, then local.yml. Every rejected
// candidate is reported as a warning with the reason the probe failed.
func SelectPlaybook(rep *report.Reporter, dest, explicit, fqdn string) string {
	if explicit != "" {
		playbook := filepath.Join(dest, explicit)
		if rc := tryPlaybook(playbook); rc != playbookOK {
			rep.Warning("%s: %s", playbook, playbookErrors[rc])
			return ""
		}
		return playbook
	}

	candidates := []string{
		filepath.Join(dest, fqdn+".yml"),
		filepath.Join(dest, shortName(fqdn)+".yml"),
		filepath.Join(dest, DefaultPlaybook),
	}

	var errors []string
	for _, candidate := range candidates {
		rc := tryPlaybook(candidate)
		if rc == playbookOK {
			return candidate
		}
		errors = append(errors, candidate+": "+playbookErrors[rc])
	}

	rep.Warning("%s", strings.Join(errors, "\n"))
	return ""
}

// SPDX-License-Identifier: Apache-2.0

package version

// Populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

// SPDX-License-Identifier: Apache-2.0

package pull

import (
	"net"
	"os"
	"strings"
)

// FQDN returns the node's fully qualified domain name. It falls back to the
// bare hostname when reverse lookup yields nothing better, and to
// "localhost" when even that is unavailable.
func FQDN() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	if strings.Contains(host, ".") {
		return host
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		return host
	}
	for _, addr := range addrs {
		names, err := net.LookupAddr(addr)
		if err != nil {
			continue
		}
		for _, name := range names {
			name = strings.TrimSuffix(name, ".")
			if strings.Contains(name, ".") {
				return name
			}
		}
	}

	return host
}

// Node returns the platform node name.
func Node() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}

// LimitOptions builds the host-pattern restricting execution to the local
// node: every plausible alias of the machine plus localhost and 127.0.0.1,
// deduplicated in a stable order.
func LimitOptions(fqdn, node string) string {
	candidates := []string{fqdn, node, shortName(fqdn), shortName(node)}

	var aliases []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		aliases = append(aliases, c)
	}

	return "localhost," + strings.Join(aliases, ",") + ",127.0.0.1"
}

func shortName(host string) string {
	name, _, _ := strings.Cut(host, ".")
	return name
}

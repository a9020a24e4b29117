// Package validate holds the address format check used for manual
// recipient lists. It is a fixed rule list, not full RFC 5322.
package validate

import "strings"

// Email reports whether addr passes the format rules, checked in order:
// non-empty after trimming, exactly one '@', non-empty local and domain
// parts, and a domain that contains a dot, does not start or end with one
// and has no empty labels.
func Email(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}

	if strings.Count(addr, "@") != 1 {
		return false
	}

	local, domain, _ := strings.Cut(addr, "@")
	if local == "" || domain == "" {
		return false
	}

	if !strings.Contains(domain, ".") {
		return false
	}

	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}

	return !strings.Contains(domain, "..")
}

// InvalidEmails returns the entries of addrs that fail Email, in order.
func InvalidEmails(addrs []string) []string {
	var bad []string
	for _, a := range addrs {
		if !Email(a) {
			bad = append(bad, a)
		}
	}
	return bad
}

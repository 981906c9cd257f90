package domain

import (
	"net"
	"regexp"
	"strings"
)

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// NormalizeName turns user input such as "https://Example.com/path" into "example.com".
func NormalizeName(input string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "https://")
	if i := strings.IndexAny(name, "/?#"); i >= 0 {
		name = name[:i]
	}
	if host, _, err := net.SplitHostPort(name); err == nil {
		name = host
	}
	name = strings.TrimPrefix(name, "www.")
	name = strings.TrimSuffix(name, ".")

	if name == "" {
		return "", NewValidationError("domain name is required")
	}
	if len(name) > 253 {
		return "", NewValidationError("domain name is too long")
	}
	if net.ParseIP(name) != nil {
		return "", NewValidationError("%q is an IP address, not a domain name", name)
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return "", NewValidationError("%q is not a fully qualified domain name", name)
	}
	for _, label := range labels {
		if !labelPattern.MatchString(label) {
			return "", NewValidationError("%q is not a valid domain name", name)
		}
	}
	return name, nil
}

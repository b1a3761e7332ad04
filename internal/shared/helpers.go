// Package shared provides common utility functions used across multiple
// packages in the sdkmigrate codebase.
package shared

import (
	"fmt"
	"strings"
)

// NormalizePackageID lowercases and trims a package id. Package ids are
// case-insensitive and feeds address them in lower case.
func NormalizePackageID(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeFeedVersion renders a version the way package feeds key it:
// lower case, build metadata dropped, three release parts minimum and a
// zero fourth part removed.
func NormalizeFeedVersion(value string) string {
	version := strings.ToLower(strings.TrimSpace(value))
	if idx := strings.Index(version, "+"); idx >= 0 {
		version = version[:idx]
	}
	release, suffix := version, ""
	if idx := strings.Index(version, "-"); idx >= 0 {
		release, suffix = version[:idx], version[idx:]
	}
	parts := strings.Split(release, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	if len(parts) == 4 && parts[3] == "0" {
		parts = parts[:3]
	}
	return strings.Join(parts, ".") + suffix
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

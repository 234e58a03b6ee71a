package utils

import "strings"

// DefaultAdminPath is where a successful login lands when no usable
// redirect target was supplied.
const DefaultAdminPath = "/admin"

// SanitizeRedirect accepts only same-site absolute paths. Anything else,
// including protocol-relative URLs, falls back to DefaultAdminPath.
func SanitizeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") {
		return DefaultAdminPath
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return DefaultAdminPath
	}
	if strings.ContainsAny(target, "\r\n") {
		return DefaultAdminPath
	}
	return target
}

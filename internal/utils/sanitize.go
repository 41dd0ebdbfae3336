package utils

import "strings"

// SanitizeFilename replaces path-hostile characters in a filename with underscores.
// Every character outside [A-Za-z0-9._-] becomes '_', and all dots except the
// final one are collapsed to '_' so the extension stays unambiguous.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastDot := strings.LastIndex(name, ".")
	for i, r := range name {
		switch {
		case r == '.' && i == lastDot:
			b.WriteRune('.')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

// FileExtension extracts the extension from a remote image path.
// Returns ".jpg" if the path has no extension.
func FileExtension(path string) string {
	lastDot := strings.LastIndex(path, ".")
	if lastDot <= 0 {
		return ".jpg"
	}
	return path[lastDot:]
}

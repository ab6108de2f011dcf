package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a string safe to use as a single path element.
// Spaces become underscores so the result needs no quoting in a shell.
func SanitizeFilename(filename string) string {
	// Remove invalid filename characters
	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	// Replace newlines/tabs with spaces
	filename = whitespaceChars.ReplaceAllString(filename, " ")

	// Collapse multiple spaces
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.TrimSpace(filename)
	filename = strings.TrimLeft(filename, ".")
	filename = strings.ReplaceAll(filename, " ", "_")

	// Limit length (most filesystems support 255, but leave room for a suffix)
	if len(filename) > 200 {
		filename = filename[:200]
	}

	// Ensure it's not empty
	if filename == "" {
		filename = "untitled"
	}

	return filename
}

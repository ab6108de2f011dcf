package utils

import (
	"regexp"
	"strings"
)

const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// KnownBookExtensions contains file extensions commonly used for e-books.
// Longer extensions come first so ".fb2.zip" wins over ".zip".
var KnownBookExtensions = []string{
	".fb2.zip",
	".fb2",
	".epub",
	".pdf",
	".txt",
	".tar.gz",
	".docx",
	".doc",
	".mobi",
	".azw3",
	".azw",
	".djvu",
	".kfx",
}

// Distribution sites that stamp their name onto downloaded files
const distributionSites = `oceanofpdf\.com|oceanofpdf|z-lib\.org|z-lib|z-library|libgen(?:\.[a-z]+)?|pdfdrive(?:\.com)?|dokumen\.pub|epdf\.pub|vdoc\.pub|ebook3000(?:\.com)?|annas-archive(?:\.org)?`

var (
	siteTag      = regexp.MustCompile(`(?i)\s*[\[(]\s*(?:` + distributionSites + `)\s*[\])]\s*`)
	sitePrefix   = regexp.MustCompile(`(?i)^(?:` + distributionSites + `)(?:[\s_.:-]+|$)`)
	siteSuffix   = regexp.MustCompile(`(?i)[\s_.-]+(?:` + distributionSites + `)$`)
	copyCounter  = regexp.MustCompile(`\s*\(\d+\)$`)
	copySuffix   = regexp.MustCompile(`(?i)[\s_-]+copy$`)
	copyPrefix   = regexp.MustCompile(`(?i)^copy of\s+`)
	repeatedDash = regexp.MustCompile(`-{2,}`)
	edgeJunk     = " -_.,;:"
)

// CleanTitle strips filename extensions, distribution-site stamps,
// duplicate-copy markers and separator artifacts from a raw book title.
// Empty input, or input that is nothing but artifacts, yields UnknownTitle.
//
//	CleanTitle("OceanofPDF.com_Dune_-_Frank_Herbert (1).epub") // "Dune - Frank Herbert"
func CleanTitle(raw string) string {
	return clean(raw, UnknownTitle)
}

// CleanAuthor applies the same rules as CleanTitle to an author name.
func CleanAuthor(raw string) string {
	return clean(raw, UnknownAuthor)
}

// NeedsCleaning reports whether CleanTitle or CleanAuthor would change s.
// It is false for every string those functions return.
func NeedsCleaning(s string) bool {
	if s == "" {
		return false
	}
	return cleanPass(s) != s
}

func clean(raw, placeholder string) string {
	s := raw
	// Each pass can expose another artifact, e.g. "(1)" hiding behind ".epub"
	for i := 0; i < 8; i++ {
		next := cleanPass(s)
		if next == s {
			break
		}
		s = next
	}

	if s == "" {
		return placeholder
	}
	return s
}

func cleanPass(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = multipleSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	s = trimExtension(s)

	s = siteTag.ReplaceAllString(s, " ")
	s = sitePrefix.ReplaceAllString(s, "")
	s = siteSuffix.ReplaceAllString(s, "")

	s = copyCounter.ReplaceAllString(s, "")
	s = copySuffix.ReplaceAllString(s, "")
	s = copyPrefix.ReplaceAllString(s, "")

	s = repeatedDash.ReplaceAllString(s, "-")
	s = multipleSpaces.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeJunk)
}

func trimExtension(s string) string {
	lower := strings.ToLower(s)
	for _, ext := range KnownBookExtensions {
		if strings.HasSuffix(lower, ext) {
			return s[:len(s)-len(ext)]
		}
	}
	return s
}

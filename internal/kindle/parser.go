// Package kindle reads Kindle "My Clippings.txt" exports and reduces them to
// one summary per book: the metadata and highlight count that an import
// records in the book history.
package kindle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry types in Kindle clippings
type EntryType string

const (
	EntryTypeHighlight EntryType = "highlight"
	EntryTypeNote      EntryType = "note"
	EntryTypeBookmark  EntryType = "bookmark"
)

// ClippingEntry represents a single parsed entry from My Clippings.txt
type ClippingEntry struct {
	Title    string
	Author   string
	Type     EntryType
	Page     int
	Location int
	AddedAt  time.Time
	Text     string
}

// BookSummary is what an import needs to know about one book.
type BookSummary struct {
	Title           string
	Author          string
	HighlightCount  int
	NoteCount       int
	LastHighlightAt time.Time
}

// Parser parses Kindle My Clippings.txt format
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

const entrySeparator = "=========="

var (
	errSkipEntry = errors.New("entry skipped")

	// "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM"
	// "- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21"
	metadataPattern = regexp.MustCompile(`^- Your (Highlight|Note|Bookmark)`)

	pagePattern     = regexp.MustCompile(`(?i)(?:on )?page (\d+)`)
	locationPattern = regexp.MustCompile(`(?i)(?:at )?location (\d+)`)

	// Date formats observed in the wild
	datePatterns = []string{
		"Monday, January 2, 2006 3:04:05 PM",
		"Monday, January 2, 2006 15:04:05",
		"Monday, 2 January 2006 3:04:05 PM",
		"Monday, 2 January 2006 15:04:05",
	}

	// "Book Title (Author Name)"; some books have no author
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)
)

// Summarize parses the clippings and returns one summary per book, in order
// of first appearance. Books with no highlights are left out.
func (p *Parser) Summarize(r io.Reader) ([]BookSummary, error) {
	entries, err := p.ParseEntries(r)
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

// ParseEntries parses individual clipping entries from the reader.
// Malformed entries and bookmarks are skipped.
func (p *Parser) ParseEntries(r io.Reader) ([]ClippingEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []ClippingEntry
	var currentLines []string

	flush := func() {
		if len(currentLines) == 0 {
			return
		}
		if entry, err := parseEntry(currentLines); err == nil {
			entries = append(entries, *entry)
		}
		currentLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), "\ufeff")
		line = strings.TrimSuffix(line, "\r")

		if line == entrySeparator {
			flush()
			continue
		}
		currentLines = append(currentLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading clippings: %w", err)
	}

	// Last entry when the file doesn't end with a separator
	flush()

	return entries, nil
}

func parseEntry(lines []string) (*ClippingEntry, error) {
	// Files written on some devices start an entry with a blank line
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) < 2 {
		return nil, errSkipEntry
	}

	title, author := parseTitleAuthor(strings.TrimSpace(lines[0]))
	if title == "" {
		return nil, errSkipEntry
	}

	metadataLine := strings.TrimSpace(lines[1])
	if !metadataPattern.MatchString(metadataLine) {
		return nil, errSkipEntry
	}

	entryType := parseEntryType(metadataLine)
	if entryType == EntryTypeBookmark {
		return nil, errSkipEntry
	}

	text := strings.TrimSpace(strings.Join(lines[2:], "\n"))
	if text == "" {
		return nil, errSkipEntry
	}

	return &ClippingEntry{
		Title:    title,
		Author:   author,
		Type:     entryType,
		Page:     firstNumber(pagePattern, metadataLine),
		Location: firstNumber(locationPattern, metadataLine),
		AddedAt:  parseDate(metadataLine),
		Text:     text,
	}, nil
}

func parseTitleAuthor(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	return strings.TrimSpace(line), ""
}

func parseEntryType(line string) EntryType {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "your note"):
		return EntryTypeNote
	case strings.Contains(lower, "your bookmark"):
		return EntryTypeBookmark
	default:
		return EntryTypeHighlight
	}
}

func firstNumber(pattern *regexp.Regexp, line string) int {
	matches := pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(matches[1])
	return n
}

func parseDate(line string) time.Time {
	idx := strings.Index(strings.ToLower(line), "added on")
	if idx == -1 {
		return time.Time{}
	}
	dateStr := strings.TrimSpace(line[idx+len("added on"):])

	for _, pattern := range datePatterns {
		if t, err := time.Parse(pattern, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// summarize groups entries by book. Kindle appends a new clipping every time
// a highlight is extended, so highlights starting at the same position count
// once.
func summarize(entries []ClippingEntry) []BookSummary {
	type tally struct {
		summary   BookSummary
		positions map[int]bool
		unplaced  int
	}

	byBook := make(map[string]*tally)
	var order []string

	for _, entry := range entries {
		key := bookKey(entry.Title, entry.Author)
		t, ok := byBook[key]
		if !ok {
			t = &tally{
				summary:   BookSummary{Title: entry.Title, Author: entry.Author},
				positions: make(map[int]bool),
			}
			byBook[key] = t
			order = append(order, key)
		}

		if entry.Type == EntryTypeNote {
			t.summary.NoteCount++
			continue
		}

		switch pos := position(entry); {
		case pos == 0:
			t.unplaced++
		case !t.positions[pos]:
			t.positions[pos] = true
		}
		if entry.AddedAt.After(t.summary.LastHighlightAt) {
			t.summary.LastHighlightAt = entry.AddedAt
		}
	}

	var books []BookSummary
	for _, key := range order {
		t := byBook[key]
		t.summary.HighlightCount = len(t.positions) + t.unplaced
		if t.summary.HighlightCount > 0 {
			books = append(books, t.summary)
		}
	}
	return books
}

// position prefers the Kindle location over the page number.
func position(entry ClippingEntry) int {
	if entry.Location > 0 {
		return entry.Location
	}
	return entry.Page
}

func bookKey(title, author string) string {
	return strings.ToLower(title) + "|" + strings.ToLower(author)
}

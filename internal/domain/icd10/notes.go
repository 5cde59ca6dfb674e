package icd10

import (
	"regexp"
	"strings"
	"unicode"
)

// NotesExtractor derives clinical inclusion/exclusion notes from a
// code's description. Extraction is heuristic and fails open: a pattern
// that does not match, or matches without a capture group, contributes
// nothing.
type NotesExtractor struct {
	inclusion []*regexp.Regexp
	exclusion []*regexp.Regexp
}

// minNoteLength is the shortest cleaned phrase worth keeping as a note.
const minNoteLength = 5

var inclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)includes?:\s*([^.;]+)`),
	regexp.MustCompile(`(?i)such as\s+([^.;,]+)`),
	regexp.MustCompile(`(?i)\bwith\s+([^.;,]+)`),
	regexp.MustCompile(`(?i)encompasses\s+([^.;]+)`),
	regexp.MustCompile(`(?i)involving\s+([^.;,]+)`),
	regexp.MustCompile(`(?i)characterized by\s+([^.;,]+)`),
}

var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)excludes?:?\s+([^.;]+)`),
	regexp.MustCompile(`(?i)not classified here`),
	regexp.MustCompile(`(?i)\bexcept\s+([^.;,]+)`),
	regexp.MustCompile(`(?i)not included:?\s*([^.;]+)`),
	regexp.MustCompile(`(?i)does not include\s+([^.;]+)`),
	regexp.MustCompile(`(?i)not elsewhere classified`),
}

// NewNotesExtractor creates an extractor over the built-in patterns and
// curated note table.
func NewNotesExtractor() *NotesExtractor {
	return &NotesExtractor{inclusion: inclusionPatterns, exclusion: exclusionPatterns}
}

// Extract derives notes for code from description and merges them with
// existing. Regex-derived entries come first, then curated entries for
// the longest matching code prefix; the combined lists are deduplicated
// case-insensitively preserving first-seen order.
func (e *NotesExtractor) Extract(code, description string, existing Notes) Notes {
	out := Notes{
		Inclusion: append([]string(nil), existing.Inclusion...),
		Exclusion: append([]string(nil), existing.Exclusion...),
	}

	out.Inclusion = append(out.Inclusion, matchNotes(e.inclusion, description)...)
	out.Exclusion = append(out.Exclusion, matchNotes(e.exclusion, description)...)

	if prefix := longestPrefix(code, func(p string) bool { _, ok := curatedNotes[p]; return ok }); prefix != "" {
		cur := curatedNotes[prefix]
		out.Inclusion = append(out.Inclusion, cur.Inclusion...)
		out.Exclusion = append(out.Exclusion, cur.Exclusion...)
	}

	out.Inclusion = dedupeFold(out.Inclusion)
	out.Exclusion = dedupeFold(out.Exclusion)
	return out
}

func matchNotes(patterns []*regexp.Regexp, description string) []string {
	var notes []string
	for _, re := range patterns {
		m := re.FindStringSubmatch(description)
		if len(m) < 2 {
			// No match, or a pattern without a capture group.
			continue
		}
		if note := cleanNote(m[1]); note != "" {
			notes = append(notes, note)
		}
	}
	return notes
}

// cleanNote trims, collapses internal whitespace, strips trailing
// punctuation and capitalizes the first letter. Phrases at or under
// minNoteLength characters are dropped.
func cleanNote(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.TrimRight(s, ".,;: ")
	if len(s) <= minNoteLength {
		return ""
	}
	return capitalizeFirst(s)
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

package icd10

import (
	"regexp"
	"sort"
	"strings"
)

// SynonymGenerator derives synonym lists from a code's description via
// parenthetical extraction, alias phrases, the bidirectional
// abbreviation table, term variations and curated per-prefix overrides.
type SynonymGenerator struct{}

// NewSynonymGenerator creates a generator over the built-in tables.
func NewSynonymGenerator() *SynonymGenerator { return &SynonymGenerator{} }

var parentheticalRe = regexp.MustCompile(`\(([^)]+)\)`)

var aliasPhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)also known as\s+([^.;,()]+)`),
	regexp.MustCompile(`(?i)also called\s+([^.;,()]+)`),
	regexp.MustCompile(`(?i)also termed\s+([^.;,()]+)`),
	regexp.MustCompile(`(?i)\btermed\s+([^.;,()]+)`),
	regexp.MustCompile(`(?i)synonymous with\s+([^.;,()]+)`),
	regexp.MustCompile(`(?i)synonym of\s+([^.;,()]+)`),
}

// Generate returns the synonym list for code. Existing synonyms are
// preserved first; derived and curated candidates follow in a fixed
// order. The result is deduplicated case-insensitively and never
// contains the raw description itself.
func (g *SynonymGenerator) Generate(code, description string, existing []string) []string {
	candidates := append([]string(nil), existing...)

	for _, m := range parentheticalRe.FindAllStringSubmatch(description, -1) {
		candidates = append(candidates, cleanSynonym(m[1]))
	}

	for _, re := range aliasPhraseRes {
		if m := re.FindStringSubmatch(description); len(m) >= 2 {
			candidates = append(candidates, cleanSynonym(m[1]))
		}
	}

	// Tables are walked in sorted key order so the generated list is
	// stable across runs.
	lower := strings.ToLower(description)
	for _, abbr := range sortedKeys(abbreviations) {
		expansion := abbreviations[abbr]
		if containsWord(description, abbr) {
			candidates = append(candidates, cleanSynonym(expansion))
		}
		if strings.Contains(lower, strings.ToLower(expansion)) {
			candidates = append(candidates, abbr)
		}
	}

	for _, term := range sortedKeys(termVariations) {
		if strings.Contains(lower, term) {
			for _, v := range termVariations[term] {
				candidates = append(candidates, cleanSynonym(v))
			}
		}
	}

	if prefix := longestPrefix(code, func(p string) bool { _, ok := curatedSynonyms[p]; return ok }); prefix != "" {
		candidates = append(candidates, curatedSynonyms[prefix]...)
	}

	out := make([]string, 0, len(candidates))
	for _, c := range dedupeFold(candidates) {
		if strings.EqualFold(c, description) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// cleanSynonym collapses whitespace, strips trailing punctuation and
// capitalizes the first letter only when the candidate carries no
// uppercase at all, so abbreviations and proper casing pass through
// untouched.
func cleanSynonym(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.TrimRight(s, ".,;: ")
	if s == "" {
		return ""
	}
	if strings.ToLower(s) == s {
		s = capitalizeFirst(s)
	}
	return s
}

// containsWord reports whether text contains token as a standalone word
// (so "DM" is not found inside "CDM").
func containsWord(text, token string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package icd10

import (
	"regexp"
	"strings"
)

// Builder derives parent/child relationships for a batch of codes.
// Unlike the other enrichers it needs the entire working batch as
// context: relationships are discovered only between codes present in
// the batch, so a run over a partial subset links only what that
// subset contains.
type Builder struct{}

// NewBuilder creates a hierarchy builder.
func NewBuilder() *Builder { return &Builder{} }

// HierarchyStats summarizes one Build pass.
type HierarchyStats struct {
	Processed      int
	ParentsLinked  int
	ChildrenLinked int
	Orphans        int
}

// encounterSuffixRe matches a single trailing encounter-suffix letter
// (initial/subsequent encounter, sequela) on a code that has numeric or
// decimal structure before it.
var encounterSuffixRe = regexp.MustCompile(`[A-Z]$`)

// cleanCode strips one trailing encounter-suffix letter. Three-character
// category codes are left untouched.
func cleanCode(code string) string {
	if len(code) > 3 && encounterSuffixRe.MatchString(code) {
		return code[:len(code)-1]
	}
	return code
}

// ParentOf derives the structural parent of code, or "" when the code
// has no parent (category codes of three or fewer characters) or is too
// malformed to carry structure. A code carrying an encounter suffix
// parents to its suffix-free form; decimal and character truncation
// apply only past that point.
func (b *Builder) ParentOf(code string) string {
	clean := cleanCode(code)
	if clean != code {
		return clean
	}
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		base, decimal := clean[:i], clean[i+1:]
		if len(decimal) > 1 {
			return base + "." + decimal[:len(decimal)-1]
		}
		return base
	}
	if len(clean) > 3 {
		return clean[:len(clean)-1]
	}
	return ""
}

// IsChildOf reports whether child is a direct child of parent: the
// child's cleaned form must reverse to parent under exactly one
// truncation step. Skip-level relationships are rejected ("E11.21" is a
// child of "E11.2", not of "E11").
func (b *Builder) IsChildOf(child, parent string) bool {
	return parent != "" && b.ParentOf(child) == parent
}

// Build computes parent_code and children_codes for every record in
// batch, linking only to codes present in the batch. Records with
// neither a parent nor children are counted as orphans. The batch is
// mutated in place and must be fully materialized before the call; the
// pass is not safe to interleave with concurrent mutation.
func (b *Builder) Build(batch []*CodeRecord) HierarchyStats {
	stats := HierarchyStats{Processed: len(batch)}

	index := make(map[string]*CodeRecord, len(batch))
	for _, rec := range batch {
		index[rec.Code] = rec
	}

	children := make(map[string][]string)
	for _, rec := range batch {
		parent := b.ParentOf(rec.Code)
		if parent == "" {
			continue
		}
		if _, ok := index[parent]; !ok {
			continue
		}
		rec.ParentCode = parent
		stats.ParentsLinked++
		children[parent] = append(children[parent], rec.Code)
	}

	for _, rec := range batch {
		if kids, ok := children[rec.Code]; ok {
			rec.ChildrenCodes = kids
			rec.SortChildren()
			stats.ChildrenLinked += len(rec.ChildrenCodes)
		}
	}

	for _, rec := range batch {
		if rec.ParentCode == "" && len(rec.ChildrenCodes) == 0 {
			stats.Orphans++
		}
	}
	return stats
}

// presumedBillable reports whether a code looks like a billable leaf:
// anything more specific than a three-character category code. Used to
// derive is_billable on ingest when the source row carries no value.
func presumedBillable(code string) bool {
	clean := cleanCode(code)
	return strings.IndexByte(clean, '.') >= 0 || len(clean) > 3
}

package icd10

import (
	"sort"
	"strings"
	"time"
)

// SystemICD10 is the canonical system URI for ICD-10-CM codes.
const SystemICD10 = "http://hl7.org/fhir/sid/icd-10-cm"

// CodeRecord is one row of the ICD-10 reference table, enriched by the
// pipeline. Code is the primary key and is stored uppercase; list fields
// keep insertion order and are deduplicated.
type CodeRecord struct {
	Code           string   `db:"code" json:"code"`
	Description    string   `db:"description" json:"description"`
	Category       string   `db:"category" json:"category,omitempty"`
	Chapter        string   `db:"chapter" json:"chapter,omitempty"`
	Synonyms       []string `db:"synonyms" json:"synonyms,omitempty"`
	InclusionNotes []string `db:"inclusion_notes" json:"inclusion_notes,omitempty"`
	ExclusionNotes []string `db:"exclusion_notes" json:"exclusion_notes,omitempty"`
	ParentCode     string   `db:"parent_code" json:"parent_code,omitempty"`
	ChildrenCodes  []string `db:"children_codes" json:"children_codes,omitempty"`
	IsBillable     bool     `db:"is_billable" json:"is_billable"`
	Source         string   `db:"source" json:"source,omitempty"`
	SearchText     string   `db:"search_text" json:"search_text,omitempty"`
}

// ComputeSearchText derives the full-text field from code, description,
// category and synonyms. It is recomputed on every upsert.
func (r *CodeRecord) ComputeSearchText() string {
	parts := make([]string, 0, 3+len(r.Synonyms))
	parts = append(parts, r.Code, r.Description, r.Category)
	parts = append(parts, r.Synonyms...)
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}

// SortChildren normalizes ChildrenCodes to a sorted, deduplicated set so
// stored rows compare stably across runs.
func (r *CodeRecord) SortChildren() {
	if len(r.ChildrenCodes) == 0 {
		return
	}
	r.ChildrenCodes = dedupe(r.ChildrenCodes)
	sort.Strings(r.ChildrenCodes)
}

// Notes holds the inclusion/exclusion note lists produced by the notes
// extractor.
type Notes struct {
	Inclusion []string `json:"inclusion_notes"`
	Exclusion []string `json:"exclusion_notes"`
}

// EnhancementStats counts what the enrichment passes added during a run.
type EnhancementStats struct {
	NotesAdded         int `json:"notes_added"`
	SynonymsAdded      int `json:"synonyms_added"`
	CategoriesAssigned int `json:"categories_assigned"`
	RelationshipsAdded int `json:"relationships_added"`
	Orphans            int `json:"orphans"`
}

// ComponentStats reports per-enricher processed/added counters.
type ComponentStats struct {
	NotesProcessed     int `json:"notes_processed"`
	NotesAdded         int `json:"notes_added"`
	SynonymsProcessed  int `json:"synonyms_processed"`
	SynonymsAdded      int `json:"synonyms_added"`
	HierarchyProcessed int `json:"hierarchy_processed"`
	ParentsLinked      int `json:"parents_linked"`
	ChildrenLinked     int `json:"children_linked"`
}

// FieldCoverage is the count and percentage of stored rows with a
// non-empty value for one enriched field.
type FieldCoverage struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DatabaseStats is the post-commit coverage report computed from the
// store. Available is false when the coverage query failed after the
// chunks committed; the rest of the run report is still returned.
type DatabaseStats struct {
	Available  bool                     `json:"available"`
	TotalCodes int                      `json:"total_codes"`
	Coverage   map[string]FieldCoverage `json:"coverage,omitempty"`
}

// RunReport is the structured result of one pipeline run.
type RunReport struct {
	RunID               string           `json:"run_id"`
	ProcessingTime      time.Duration    `json:"processing_time_ns"`
	TotalCodesProcessed int              `json:"total_codes_processed"`
	ChunksWritten       int              `json:"chunks_written"`
	EnhancementStats    EnhancementStats `json:"enhancement_statistics"`
	DatabaseStats       DatabaseStats    `json:"database_statistics"`
	ComponentStats      ComponentStats   `json:"component_statistics"`
}

// dedupe removes duplicates (case-sensitive) preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// dedupeFold removes duplicates case-insensitively preserving first-seen
// order. Used for note and synonym lists where "Type 1 diabetes" and
// "type 1 diabetes" are the same entry.
func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

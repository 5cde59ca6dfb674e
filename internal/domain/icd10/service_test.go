package icd10

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/rs/zerolog"
)

// =========== Mock Repository ===========

// mockCodeRepo is an in-memory CodeRepository applying the same
// non-regressive merge policy as the Postgres implementation.
type mockCodeRepo struct {
	store       map[string]*CodeRecord
	chunkSizes  []int
	failAtChunk int // 1-based; 0 = never fail
	coverageErr error
}

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{store: make(map[string]*CodeRecord)}
}

func (m *mockCodeRepo) seed(recs ...*CodeRecord) {
	for _, r := range recs {
		cp := *r
		m.store[cp.Code] = &cp
	}
}

func (m *mockCodeRepo) ListOrdered(_ context.Context, limit int) ([]*CodeRecord, error) {
	codes := make([]string, 0, len(m.store))
	for c := range m.store {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	if limit > 0 && limit < len(codes) {
		codes = codes[:limit]
	}

	out := make([]*CodeRecord, 0, len(codes))
	for _, c := range codes {
		cp := *m.store[c]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockCodeRepo) UpsertAll(_ context.Context, records []*CodeRecord, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunks := 0
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}
		if m.failAtChunk > 0 && chunks+1 == m.failAtChunk {
			return chunks, fmt.Errorf("upsert chunk %d: connection reset", chunks+1)
		}
		for _, rec := range records[start:end] {
			m.merge(rec)
		}
		m.chunkSizes = append(m.chunkSizes, end-start)
		chunks++
	}
	return chunks, nil
}

func (m *mockCodeRepo) merge(rec *CodeRecord) {
	rec.SearchText = rec.ComputeSearchText()
	old, ok := m.store[rec.Code]
	if !ok {
		cp := *rec
		m.store[rec.Code] = &cp
		return
	}

	mergeText := func(oldV, newV string) string {
		if newV != "" {
			return newV
		}
		return oldV
	}
	mergeList := func(oldV, newV []string) []string {
		if len(newV) > len(oldV) {
			return newV
		}
		return oldV
	}

	old.Description = mergeText(old.Description, rec.Description)
	old.Category = mergeText(old.Category, rec.Category)
	old.Chapter = mergeText(old.Chapter, rec.Chapter)
	old.ParentCode = mergeText(old.ParentCode, rec.ParentCode)
	old.Source = mergeText(old.Source, rec.Source)
	old.Synonyms = mergeList(old.Synonyms, rec.Synonyms)
	old.InclusionNotes = mergeList(old.InclusionNotes, rec.InclusionNotes)
	old.ExclusionNotes = mergeList(old.ExclusionNotes, rec.ExclusionNotes)
	old.ChildrenCodes = mergeList(old.ChildrenCodes, rec.ChildrenCodes)
	old.IsBillable = old.IsBillable || rec.IsBillable
	old.SearchText = rec.SearchText
}

func (m *mockCodeRepo) Coverage(_ context.Context) (*DatabaseStats, error) {
	if m.coverageErr != nil {
		return nil, m.coverageErr
	}
	total := len(m.store)
	var withCategory, withSynonyms, withNotes, withHierarchy int
	for _, r := range m.store {
		if r.Category != "" {
			withCategory++
		}
		if len(r.Synonyms) > 0 {
			withSynonyms++
		}
		if len(r.InclusionNotes) > 0 || len(r.ExclusionNotes) > 0 {
			withNotes++
		}
		if r.ParentCode != "" || len(r.ChildrenCodes) > 0 {
			withHierarchy++
		}
	}
	return &DatabaseStats{
		Available:  true,
		TotalCodes: total,
		Coverage: map[string]FieldCoverage{
			"category":       coverageOf(withCategory, total),
			"synonyms":       coverageOf(withSynonyms, total),
			"clinical_notes": coverageOf(withNotes, total),
			"hierarchy":      coverageOf(withHierarchy, total),
		},
	}, nil
}

func newTestService(repo CodeRepository, chunkSize int) *Service {
	return NewService(repo, zerolog.Nop(), chunkSize, "cms-icd10")
}

// =========== Tests ===========

func TestRunEndToEnd(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(
		&CodeRecord{Code: "E11", Description: "Type 2 diabetes mellitus"},
		&CodeRecord{Code: "E11.2", Description: "Type 2 diabetes mellitus with kidney complications"},
		&CodeRecord{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications, excludes type 1 diabetes"},
		&CodeRecord{Code: "I10", Description: "Essential (primary) hypertension"},
	)
	svc := newTestService(repo, 2)

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.TotalCodesProcessed != 4 {
		t.Errorf("TotalCodesProcessed = %d, want 4", report.TotalCodesProcessed)
	}
	if report.ChunksWritten != 2 {
		t.Errorf("ChunksWritten = %d, want 2", report.ChunksWritten)
	}
	if report.RunID == "" {
		t.Error("RunID must be set")
	}

	e119 := repo.store["E11.9"]
	if e119.Category != "Diabetes mellitus" {
		t.Errorf("E11.9 category = %q, want Diabetes mellitus", e119.Category)
	}
	if e119.Chapter != "E00-E89" {
		t.Errorf("E11.9 chapter = %q, want E00-E89", e119.Chapter)
	}
	if e119.ParentCode != "E11" {
		t.Errorf("E11.9 parent = %q, want E11", e119.ParentCode)
	}
	if len(e119.ExclusionNotes) == 0 {
		t.Error("E11.9 exclusion notes missing")
	}
	if len(e119.Synonyms) == 0 {
		t.Error("E11.9 synonyms missing")
	}
	if e119.SearchText == "" {
		t.Error("E11.9 search_text not recomputed")
	}

	i10 := repo.store["I10"]
	if i10.Category != "Hypertensive diseases" {
		t.Errorf("I10 category = %q, want the sub-range label", i10.Category)
	}
	if i10.ParentCode != "" || len(i10.ChildrenCodes) != 0 {
		t.Error("I10 must stay an orphan in this batch")
	}

	if !reflect.DeepEqual(repo.store["E11"].ChildrenCodes, []string{"E11.2", "E11.9"}) {
		t.Errorf("E11 children = %v", repo.store["E11"].ChildrenCodes)
	}

	if !report.DatabaseStats.Available {
		t.Fatal("database statistics should be available")
	}
	if got := report.DatabaseStats.Coverage["category"].Percentage; got != 100 {
		t.Errorf("category coverage = %v, want 100", got)
	}
}

func TestRunIdempotent(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(
		&CodeRecord{Code: "E11", Description: "Type 2 diabetes mellitus"},
		&CodeRecord{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications, excludes type 1 diabetes"},
		&CodeRecord{Code: "I10", Description: "Essential (primary) hypertension"},
	)
	svc := newTestService(repo, 0)

	if _, err := svc.Run(context.Background(), 0); err != nil {
		t.Fatalf("first run: %v", err)
	}
	snapshot := make(map[string]CodeRecord, len(repo.store))
	for code, rec := range repo.store {
		snapshot[code] = *rec
	}

	if _, err := svc.Run(context.Background(), 0); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for code, before := range snapshot {
		after := *repo.store[code]
		if !reflect.DeepEqual(before, after) {
			t.Errorf("record %s changed on second run:\nbefore %+v\nafter  %+v", code, before, after)
		}
	}
}

func TestNonRegressiveMerge(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(&CodeRecord{
		Code:        "E11.9",
		Description: "Type 2 diabetes mellitus without complications",
		Category:    "Diabetes mellitus",
		Synonyms:    []string{"T2DM", "Adult-onset diabetes", "Non-insulin-dependent diabetes"},
		ParentCode:  "E11",
	})

	// A later, sparser batch proposes fewer synonyms, no category and no
	// parent; the stored values must survive.
	_, err := repo.UpsertAll(context.Background(), []*CodeRecord{{
		Code:        "E11.9",
		Description: "Type 2 diabetes mellitus without complications",
		Synonyms:    []string{"T2DM", "Diabetes"},
	}}, 10)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got := repo.store["E11.9"]
	if len(got.Synonyms) != 3 {
		t.Errorf("synonyms = %v, want the longer stored list retained", got.Synonyms)
	}
	if got.Category != "Diabetes mellitus" {
		t.Errorf("category = %q, want stored value retained", got.Category)
	}
	if got.ParentCode != "E11" {
		t.Errorf("parent = %q, want stored value retained", got.ParentCode)
	}
}

func TestRunCoverageFailureDegrades(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(&CodeRecord{Code: "I10", Description: "Essential (primary) hypertension"})
	repo.coverageErr = fmt.Errorf("connection closed")
	svc := newTestService(repo, 0)

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("run should survive a coverage failure, got %v", err)
	}
	if report.DatabaseStats.Available {
		t.Error("DatabaseStats.Available should be false after a coverage failure")
	}
	if report.ComponentStats.SynonymsProcessed != 1 {
		t.Error("in-memory component statistics must still be reported")
	}
}

func TestRunChunkFailureFailsFast(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(
		&CodeRecord{Code: "E11.2", Description: "Type 2 diabetes mellitus with kidney complications"},
		&CodeRecord{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications"},
		&CodeRecord{Code: "I10", Description: "Essential (primary) hypertension"},
		&CodeRecord{Code: "J45.909", Description: "Unspecified asthma, uncomplicated"},
	)
	repo.failAtChunk = 2
	svc := newTestService(repo, 2)

	_, err := svc.Run(context.Background(), 0)
	if err == nil {
		t.Fatal("expected chunk failure to propagate")
	}
	// The first chunk stays committed.
	if len(repo.chunkSizes) != 1 {
		t.Errorf("committed chunks = %d, want 1", len(repo.chunkSizes))
	}
}

func TestLoadRecordsCanonicalizes(t *testing.T) {
	repo := newMockCodeRepo()
	svc := newTestService(repo, 0)

	report, err := svc.LoadRecords(context.Background(), []*CodeRecord{
		{Code: " e11.9 ", Description: "Type 2 diabetes mellitus without complications"},
		{Code: "I10", Description: "Essential (primary) hypertension"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.TotalCodesProcessed != 2 {
		t.Errorf("TotalCodesProcessed = %d, want 2", report.TotalCodesProcessed)
	}

	rec, ok := repo.store["E11.9"]
	if !ok {
		t.Fatal("code not canonicalized to uppercase E11.9")
	}
	if !rec.IsBillable {
		t.Error("E11.9 should be presumed billable on ingest")
	}
	if rec.Source != "cms-icd10" {
		t.Errorf("source = %q, want default source label", rec.Source)
	}
	if repo.store["I10"].IsBillable {
		t.Error("three-character I10 should not be presumed billable")
	}
}

func TestLoadRecordsRejectsEmptyCode(t *testing.T) {
	repo := newMockCodeRepo()
	svc := newTestService(repo, 0)

	_, err := svc.LoadRecords(context.Background(), []*CodeRecord{
		{Code: "  ", Description: "mystery row"},
	})
	if err == nil {
		t.Fatal("expected an error for a record without a code")
	}
}

func TestRunWithLimit(t *testing.T) {
	repo := newMockCodeRepo()
	repo.seed(
		&CodeRecord{Code: "E11", Description: "Type 2 diabetes mellitus"},
		&CodeRecord{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications"},
		&CodeRecord{Code: "I10", Description: "Essential (primary) hypertension"},
	)
	svc := newTestService(repo, 0)

	report, err := svc.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.TotalCodesProcessed != 2 {
		t.Errorf("TotalCodesProcessed = %d, want 2 (sampled run)", report.TotalCodesProcessed)
	}
}

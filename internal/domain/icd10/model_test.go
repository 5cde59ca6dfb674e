package icd10

import (
	"reflect"
	"testing"
)

func TestComputeSearchText(t *testing.T) {
	rec := &CodeRecord{
		Code:        "E11.9",
		Description: "Type 2 diabetes mellitus without complications",
		Category:    "Diabetes mellitus",
		Synonyms:    []string{"T2DM", "Adult-onset diabetes"},
	}

	got := rec.ComputeSearchText()
	want := "e11.9 type 2 diabetes mellitus without complications diabetes mellitus t2dm adult-onset diabetes"
	if got != want {
		t.Errorf("ComputeSearchText() = %q, want %q", got, want)
	}
}

func TestSortChildren(t *testing.T) {
	rec := &CodeRecord{ChildrenCodes: []string{"E11.9", "E11.2", "E11.9", "E11.21"}}
	rec.SortChildren()

	want := []string{"E11.2", "E11.21", "E11.9"}
	if !reflect.DeepEqual(rec.ChildrenCodes, want) {
		t.Errorf("SortChildren() = %v, want %v", rec.ChildrenCodes, want)
	}
}

func TestDedupeFold(t *testing.T) {
	got := dedupeFold([]string{"HTN", "htn", "", "High blood pressure", "HTN"})
	want := []string{"HTN", "High blood pressure"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeFold = %v, want %v", got, want)
	}
}

package icd10

import "testing"

func TestClassifySubRange(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		code string
		want string
	}{
		{"I10", "Hypertensive diseases"},
		{"I21", "Ischemic heart diseases"},
		{"E11.9", "Diabetes mellitus"},
		{"J45", "Chronic lower respiratory diseases"},
		{"N18.3", "Acute kidney failure and chronic kidney disease"},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.code, ""); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestClassifyFallsBackToChapter(t *testing.T) {
	c := NewClassifier()

	// E50 sits outside every E sub-range block.
	if got := c.Classify("E50", ""); got != "Endocrine, nutritional and metabolic diseases" {
		t.Errorf("Classify(E50) = %q, want chapter-level category", got)
	}
}

func TestClassifyPreservesExisting(t *testing.T) {
	c := NewClassifier()

	if got := c.Classify("I10", "Manually curated"); got != "Manually curated" {
		t.Errorf("Classify with existing category = %q, want it unchanged", got)
	}
}

func TestClassifyMalformedCodes(t *testing.T) {
	c := NewClassifier()

	for _, code := range []string{"", "I", "I1", "U07", "99213"} {
		if got := c.Classify(code, ""); got != "" {
			t.Errorf("Classify(%q) = %q, want empty category", code, got)
		}
	}
}

func TestChapter(t *testing.T) {
	c := NewClassifier()

	if got := c.Chapter("E11.9"); got != "E00-E89" {
		t.Errorf("Chapter(E11.9) = %q, want E00-E89", got)
	}
	if got := c.Chapter("99213"); got != "" {
		t.Errorf("Chapter(99213) = %q, want empty", got)
	}
}

package icd10

// Classifier assigns a category and chapter to a code from the static
// chapter and sub-range tables.
type Classifier struct{}

// NewClassifier creates a classifier over the built-in tables.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the category for code. An existing non-empty
// category is returned unchanged so previously assigned or manually
// curated categories are never overwritten. Codes shorter than one
// character or with an unmapped leading letter classify to "".
func (c *Classifier) Classify(code, existing string) string {
	if existing != "" {
		return existing
	}
	if code == "" {
		return ""
	}

	chapter, ok := chapterByLetter[code[0]]
	if !ok {
		return ""
	}
	if len(code) < 3 {
		return ""
	}

	base := code[:3]
	for _, sr := range subRangesByLetter[code[0]] {
		if base >= sr.Lo && base <= sr.Hi {
			return sr.Label
		}
	}
	return chapter.Name
}

// Chapter returns the coarse range label for code, e.g. "E00-E89", or
// "" when the leading letter is unmapped.
func (c *Classifier) Chapter(code string) string {
	if code == "" {
		return ""
	}
	chapter, ok := chapterByLetter[code[0]]
	if !ok {
		return ""
	}
	return chapter.Range
}

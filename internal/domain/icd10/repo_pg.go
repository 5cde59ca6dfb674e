package icd10

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultChunkSize is the number of records written per transaction when
// the caller does not specify one.
const DefaultChunkSize = 1000

type codeRepoPG struct{ pool *pgxpool.Pool }

// NewCodeRepoPG creates a CodeRepository backed by the reference_icd10
// table.
func NewCodeRepoPG(pool *pgxpool.Pool) CodeRepository { return &codeRepoPG{pool: pool} }

const selectColumns = `code, description, COALESCE(category,''), COALESCE(chapter,''),
       COALESCE(synonyms,'{}'), COALESCE(inclusion_notes,'{}'), COALESCE(exclusion_notes,'{}'),
       COALESCE(parent_code,''), COALESCE(children_codes,'{}'), is_billable,
       COALESCE(source,''), COALESCE(search_text,'')`

func (r *codeRepoPG) ListOrdered(ctx context.Context, limit int) ([]*CodeRecord, error) {
	q := `SELECT ` + selectColumns + ` FROM reference_icd10 ORDER BY code`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("icd10 list: %w", err)
	}
	defer rows.Close()

	var results []*CodeRecord
	for rows.Next() {
		var c CodeRecord
		if err := rows.Scan(&c.Code, &c.Description, &c.Category, &c.Chapter,
			&c.Synonyms, &c.InclusionNotes, &c.ExclusionNotes,
			&c.ParentCode, &c.ChildrenCodes, &c.IsBillable,
			&c.Source, &c.SearchText); err != nil {
			return nil, err
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

// upsertSQL applies the non-regressive merge policy: scalar text fields
// win only when the new value is non-empty, list fields win only when
// strictly longer than the stored list, is_billable never flips back to
// false, and search_text is always overwritten.
const upsertSQL = `
INSERT INTO reference_icd10
    (code, description, category, chapter, synonyms, inclusion_notes, exclusion_notes,
     parent_code, children_codes, is_billable, source, search_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (code) DO UPDATE SET
    description     = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE reference_icd10.description END,
    category        = CASE WHEN EXCLUDED.category <> '' THEN EXCLUDED.category ELSE reference_icd10.category END,
    chapter         = CASE WHEN EXCLUDED.chapter <> '' THEN EXCLUDED.chapter ELSE reference_icd10.chapter END,
    parent_code     = CASE WHEN EXCLUDED.parent_code <> '' THEN EXCLUDED.parent_code ELSE reference_icd10.parent_code END,
    source          = CASE WHEN EXCLUDED.source <> '' THEN EXCLUDED.source ELSE reference_icd10.source END,
    synonyms        = CASE WHEN cardinality(EXCLUDED.synonyms) > cardinality(reference_icd10.synonyms) THEN EXCLUDED.synonyms ELSE reference_icd10.synonyms END,
    inclusion_notes = CASE WHEN cardinality(EXCLUDED.inclusion_notes) > cardinality(reference_icd10.inclusion_notes) THEN EXCLUDED.inclusion_notes ELSE reference_icd10.inclusion_notes END,
    exclusion_notes = CASE WHEN cardinality(EXCLUDED.exclusion_notes) > cardinality(reference_icd10.exclusion_notes) THEN EXCLUDED.exclusion_notes ELSE reference_icd10.exclusion_notes END,
    children_codes  = CASE WHEN cardinality(EXCLUDED.children_codes) > cardinality(reference_icd10.children_codes) THEN EXCLUDED.children_codes ELSE reference_icd10.children_codes END,
    is_billable     = reference_icd10.is_billable OR EXCLUDED.is_billable,
    search_text     = EXCLUDED.search_text,
    updated_at      = NOW()`

func (r *codeRepoPG) UpsertAll(ctx context.Context, records []*CodeRecord, chunkSize int) (int, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunks := 0
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := r.upsertChunk(ctx, records[start:end]); err != nil {
			return chunks, fmt.Errorf("upsert chunk %d: %w", chunks+1, err)
		}
		chunks++
	}
	return chunks, nil
}

func (r *codeRepoPG) upsertChunk(ctx context.Context, chunk []*CodeRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range chunk {
		rec.SearchText = rec.ComputeSearchText()
		if _, err := tx.Exec(ctx, upsertSQL,
			rec.Code, rec.Description, rec.Category, rec.Chapter,
			textArray(rec.Synonyms), textArray(rec.InclusionNotes), textArray(rec.ExclusionNotes),
			rec.ParentCode, textArray(rec.ChildrenCodes), rec.IsBillable,
			rec.Source, rec.SearchText,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.Code, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *codeRepoPG) Coverage(ctx context.Context) (*DatabaseStats, error) {
	var total, withCategory, withSynonyms, withNotes, withHierarchy int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE COALESCE(category,'') <> ''),
		       COUNT(*) FILTER (WHERE cardinality(COALESCE(synonyms,'{}')) > 0),
		       COUNT(*) FILTER (WHERE cardinality(COALESCE(inclusion_notes,'{}')) > 0
		                           OR cardinality(COALESCE(exclusion_notes,'{}')) > 0),
		       COUNT(*) FILTER (WHERE COALESCE(parent_code,'') <> ''
		                           OR cardinality(COALESCE(children_codes,'{}')) > 0)
		FROM reference_icd10`).
		Scan(&total, &withCategory, &withSynonyms, &withNotes, &withHierarchy)
	if err != nil {
		return nil, fmt.Errorf("icd10 coverage: %w", err)
	}

	stats := &DatabaseStats{
		Available:  true,
		TotalCodes: total,
		Coverage: map[string]FieldCoverage{
			"category":       coverageOf(withCategory, total),
			"synonyms":       coverageOf(withSynonyms, total),
			"clinical_notes": coverageOf(withNotes, total),
			"hierarchy":      coverageOf(withHierarchy, total),
		},
	}
	return stats, nil
}

func coverageOf(count, total int) FieldCoverage {
	fc := FieldCoverage{Count: count}
	if total > 0 {
		fc.Percentage = 100 * float64(count) / float64(total)
	}
	return fc
}

// textArray normalizes a nil slice to an empty one so array columns
// never store NULL.
func textArray(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

package icd10

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service orchestrates the enrichment pipeline: classification and
// notes/synonym extraction per record, hierarchy derivation over the
// full batch, then the chunked non-regressive load.
//
// A run is strictly sequential. Two runs must not execute concurrently
// against the same store: the merge policy compares new values against
// currently stored ones at write time, so concurrent writers can lose
// updates.
type Service struct {
	repo       CodeRepository
	classifier *Classifier
	notes      *NotesExtractor
	synonyms   *SynonymGenerator
	hierarchy  *Builder
	logger     zerolog.Logger

	chunkSize int
	source    string
}

// NewService creates the enrichment service. chunkSize <= 0 falls back
// to DefaultChunkSize; source labels rows ingested without a provenance
// value.
func NewService(repo CodeRepository, logger zerolog.Logger, chunkSize int, source string) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Service{
		repo:       repo,
		classifier: NewClassifier(),
		notes:      NewNotesExtractor(),
		synonyms:   NewSynonymGenerator(),
		hierarchy:  NewBuilder(),
		logger:     logger,
		chunkSize:  chunkSize,
		source:     source,
	}
}

// Run reads the stored reference table back (ordered by code, optionally
// limited for sampled runs), enriches it and persists the result.
func (s *Service) Run(ctx context.Context, limit int) (*RunReport, error) {
	batch, err := s.repo.ListOrdered(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return s.process(ctx, batch)
}

// LoadRecords ingests a directly supplied batch, then enriches and
// persists it. Codes are canonicalized to uppercase; records without a
// code are rejected.
func (s *Service) LoadRecords(ctx context.Context, records []*CodeRecord) (*RunReport, error) {
	for _, rec := range records {
		if strings.TrimSpace(rec.Code) == "" {
			return nil, fmt.Errorf("record with empty code (description %q)", rec.Description)
		}
		rec.Code = strings.ToUpper(strings.TrimSpace(rec.Code))
		if rec.Source == "" {
			rec.Source = s.source
		}
		if !rec.IsBillable {
			rec.IsBillable = presumedBillable(rec.Code)
		}
	}
	return s.process(ctx, records)
}

func (s *Service) process(ctx context.Context, batch []*CodeRecord) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:               uuid.NewString(),
		TotalCodesProcessed: len(batch),
	}
	log := s.logger.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("codes", len(batch)).Msg("enrichment run started")

	// Pass 1+2: per-record classification, notes, synonyms.
	for _, rec := range batch {
		if cat := s.classifier.Classify(rec.Code, rec.Category); cat != rec.Category {
			rec.Category = cat
			report.EnhancementStats.CategoriesAssigned++
		}
		if rec.Chapter == "" {
			rec.Chapter = s.classifier.Chapter(rec.Code)
		}

		before := len(rec.InclusionNotes) + len(rec.ExclusionNotes)
		merged := s.notes.Extract(rec.Code, rec.Description, Notes{
			Inclusion: rec.InclusionNotes,
			Exclusion: rec.ExclusionNotes,
		})
		rec.InclusionNotes = merged.Inclusion
		rec.ExclusionNotes = merged.Exclusion
		report.ComponentStats.NotesProcessed++
		added := len(rec.InclusionNotes) + len(rec.ExclusionNotes) - before
		if added > 0 {
			report.ComponentStats.NotesAdded += added
		}

		beforeSyn := len(rec.Synonyms)
		rec.Synonyms = s.synonyms.Generate(rec.Code, rec.Description, rec.Synonyms)
		report.ComponentStats.SynonymsProcessed++
		if gained := len(rec.Synonyms) - beforeSyn; gained > 0 {
			report.ComponentStats.SynonymsAdded += gained
		}
	}
	report.EnhancementStats.NotesAdded = report.ComponentStats.NotesAdded
	report.EnhancementStats.SynonymsAdded = report.ComponentStats.SynonymsAdded
	log.Info().
		Int("notes_added", report.ComponentStats.NotesAdded).
		Int("synonyms_added", report.ComponentStats.SynonymsAdded).
		Msg("text enrichment complete")

	// Pass 3: hierarchy over the fully materialized batch.
	hs := s.hierarchy.Build(batch)
	report.ComponentStats.HierarchyProcessed = hs.Processed
	report.ComponentStats.ParentsLinked = hs.ParentsLinked
	report.ComponentStats.ChildrenLinked = hs.ChildrenLinked
	report.EnhancementStats.RelationshipsAdded = hs.ParentsLinked + hs.ChildrenLinked
	report.EnhancementStats.Orphans = hs.Orphans
	log.Info().
		Int("parents_linked", hs.ParentsLinked).
		Int("children_linked", hs.ChildrenLinked).
		Int("orphans", hs.Orphans).
		Msg("hierarchy built")

	// Load: chunked merge-upsert, fail-fast at chunk granularity.
	chunks, err := s.repo.UpsertAll(ctx, batch, s.chunkSize)
	report.ChunksWritten = chunks
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	log.Info().Int("chunks", chunks).Msg("batch persisted")

	// Coverage is best-effort after commit: a failed query degrades the
	// report instead of discarding the run.
	if stats, err := s.repo.Coverage(ctx); err != nil {
		log.Warn().Err(err).Msg("coverage query failed; reporting in-memory statistics only")
		report.DatabaseStats = DatabaseStats{Available: false}
	} else {
		report.DatabaseStats = *stats
	}

	report.ProcessingTime = time.Since(start)
	log.Info().
		Dur("duration", report.ProcessingTime).
		Int("codes", report.TotalCodesProcessed).
		Msg("enrichment run finished")
	return report, nil
}

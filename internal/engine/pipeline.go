package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/salesflow/internal/common"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/service"
)

// Pipeline runs one batch: read the source, enrich, aggregate, then hand the
// result to every writer in order.
type Pipeline struct {
	source    service.SubmissionSource
	processor *Processor
	now       func() time.Time
	newID     func() string
	writers   []service.ResultWriter
}

// NewPipeline creates a pipeline reading from source and writing to writers.
func NewPipeline(source service.SubmissionSource, processor *Processor, writers ...service.ResultWriter) *Pipeline {
	if processor == nil {
		processor = NewProcessor(DefaultProcessorOptions())
	}
	return &Pipeline{
		source:    source,
		processor: processor,
		writers:   writers,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run executes the batch. A missing source fails before anything is processed.
func (p *Pipeline) Run(ctx context.Context) (*model.RunResult, error) {
	if !p.source.Exists() {
		return nil, common.MissingSourceError(p.source.Location())
	}

	result := &model.RunResult{
		ID:        p.newID(),
		Source:    p.source.Location(),
		StartedAt: p.now(),
	}

	subs, err := p.source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read submissions from %s: %w", p.source.Location(), err)
	}
	slog.Info("Loaded submissions", "source", p.source.Location(), "rows", len(subs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Records = p.processor.Process(subs)
	result.Facts, result.Quality = Aggregate(result.Records)
	result.FinishedAt = p.now()

	slog.Info("Aggregated daily facts",
		"run_id", result.ID,
		"fact_rows", len(result.Facts),
		"duplicates", result.Quality.DuplicatesFlagged,
		"missing_any", result.Quality.RowsMissingAny())

	for _, w := range p.writers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := w.Write(ctx, result); err != nil {
			return result, fmt.Errorf("failed to write %s output: %w", w.Name(), err)
		}
		slog.Debug("Wrote run output", "writer", w.Name(), "run_id", result.ID)
	}

	return result, nil
}

// Package engine turns raw sales submissions into enriched records, daily facts
// and a data-quality report.
package engine

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/Veraticus/salesflow/internal/dedupe"
	"github.com/Veraticus/salesflow/internal/extract"
	"github.com/Veraticus/salesflow/internal/model"
	"github.com/Veraticus/salesflow/internal/resolve"
	"github.com/Veraticus/salesflow/internal/service"
)

// ProcessorOptions configures record processing.
type ProcessorOptions struct {
	Progress service.ProgressFunc // Called once per record, possibly from several goroutines
	Units    *extract.QuantityExtractor
	Amount   *extract.AmountExtractor
	Workers  int // Number of parallel workers for per-record enrichment
}

// DefaultProcessorOptions returns the default extractors and one worker per CPU.
func DefaultProcessorOptions() ProcessorOptions {
	return ProcessorOptions{
		Units:   extract.DefaultQuantityExtractor(),
		Amount:  extract.DefaultAmountExtractor(),
		Workers: runtime.NumCPU(),
	}
}

// Processor enriches a batch of submissions.
type Processor struct {
	units    *extract.QuantityExtractor
	amount   *extract.AmountExtractor
	progress service.ProgressFunc
	workers  int
}

// NewProcessor creates a processor. Zero-valued options fall back to the defaults.
func NewProcessor(opts ProcessorOptions) *Processor {
	defaults := DefaultProcessorOptions()
	if opts.Units == nil {
		opts.Units = defaults.Units
	}
	if opts.Amount == nil {
		opts.Amount = defaults.Amount
	}
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}

	return &Processor{
		units:    opts.Units,
		amount:   opts.Amount,
		progress: opts.Progress,
		workers:  opts.Workers,
	}
}

// Enrich derives every per-record field of a single submission.
// It does not set DupKey or IsDuplicate, which need the whole batch.
func (p *Processor) Enrich(sub model.Submission) model.EnrichedSubmission {
	units := p.units.Extract(sub.RawText)
	revenue := p.amount.Extract(sub.RawText)
	saleDate, rule := resolve.ResolveSaleDate(sub.SalesDateClaimed, sub.MessageTimestamp)

	return model.EnrichedSubmission{
		Submission:         sub,
		UnitsSold:          units,
		Revenue:            revenue,
		SaleDate:           saleDate,
		DateResolutionRule: rule,
		SubmissionStatus:   resolve.ClassifySubmission(saleDate, sub.MessageTimestamp),
		ParseStatus:        model.ParseStatusFor(units, revenue),
		RepKey:             sub.RepKey(),
	}
}

// Process enriches every submission in parallel, then flags duplicates over
// the complete batch. The result has one record per submission, in input order.
func (p *Processor) Process(subs []model.Submission) []model.EnrichedSubmission {
	records := make([]model.EnrichedSubmission, len(subs))
	if len(subs) == 0 {
		return records
	}

	workers := p.workers
	if workers > len(subs) {
		workers = len(subs)
	}

	workChan := make(chan int, len(subs))
	for i := range subs {
		workChan <- i
	}
	close(workChan)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range workChan {
				// Each index is written by exactly one worker.
				records[i] = p.Enrich(subs[i])
				if p.progress != nil {
					p.progress()
				}
			}
		}()
	}
	wg.Wait()

	flagged := dedupe.Flag(records)

	slog.Debug("processed submissions",
		"records", len(records),
		"workers", workers,
		"duplicates", flagged)

	return records
}

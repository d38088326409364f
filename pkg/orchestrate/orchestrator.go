package orchestrate

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"menu-scraper/pkg/models"
)

// SiteProcessor runs the full pipeline for one restaurant.
type SiteProcessor interface {
	Process(ctx context.Context, r models.Restaurant) models.SiteResult
}

// Orchestrator fans restaurants out over a bounded worker pool and collects
// their results in input order. Concurrency is capped by a weighted
// semaphore shared across the whole run.
type Orchestrator struct {
	processor   SiteProcessor
	sem         *semaphore.Weighted
	concurrency int
	progress    *ProgressPrinter
	log         *logrus.Entry
}

// NewOrchestrator creates an orchestrator processing up to concurrency
// restaurants at once. Values below 1 fall back to 1.
func NewOrchestrator(processor SiteProcessor, concurrency int, progress *ProgressPrinter, log *logrus.Entry) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		processor:   processor,
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: concurrency,
		progress:    progress,
		log:         log,
	}
}

// Run processes every restaurant and returns their results in input order.
// Context cancellation stops new acquisitions promptly; sites already
// in flight finish and their results are included. The returned error is
// the context's error when the run was cut short, nil otherwise.
func (o *Orchestrator) Run(ctx context.Context, restaurants []models.Restaurant) ([]models.SiteResult, error) {
	startTime := time.Now()
	o.log.Infof("Processing %d restaurants with concurrency %d", len(restaurants), o.concurrency)

	slots := make([]*models.SiteResult, len(restaurants))
	var wg sync.WaitGroup

	for i, r := range restaurants {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			o.log.Warnf("Stopping launches after %d of %d restaurants: %v", i, len(restaurants), err)
			break
		}
		wg.Add(1)
		go func(i int, r models.Restaurant) {
			defer wg.Done()
			defer o.sem.Release(1)
			res := o.processor.Process(ctx, r)
			slots[i] = &res
			o.progress.Line(r.Name, res.Status())
		}(i, r)
	}

	wg.Wait()

	results := make([]models.SiteResult, 0, len(restaurants))
	for _, res := range slots {
		if res != nil {
			results = append(results, *res)
		}
	}

	o.logSummary(results, time.Since(startTime))
	return results, ctx.Err()
}

// logSummary reports run-level aggregates to the diagnostic log.
func (o *Orchestrator) logSummary(results []models.SiteResult, totalDuration time.Duration) {
	foundCount := 0
	skippedCount := 0
	for _, res := range results {
		if res.Found {
			foundCount++
		}
		if res.Skipped {
			skippedCount++
		}
	}
	o.log.Infof("Processed %d restaurants in %v", len(results), totalDuration)
	o.log.Infof("Found menus for %d/%d restaurants (%d skipped because menus already existed)",
		foundCount, len(results), skippedCount)
}

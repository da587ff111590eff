package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-profiler/internal/logger"
)

// BatchResult is the outcome of one batch item; exactly one of Result and Err is set
type BatchResult struct {
	ID     string
	Result *Result
	Err    error
}

// RunBatch processes items with at most opts.Concurrency in flight. Results are
// returned in input order. A failing item does not stop the others; only
// cancellation of ctx leaves unstarted items with the context error.
func (r *Runner) RunBatch(ctx context.Context, items []Input, opts RunOptions) []BatchResult {
	log := logger.Ctx(ctx)
	results := make([]BatchResult, len(items))

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		results[i].ID = item.ID
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			result, err := r.Run(ctx, item, opts)
			if err != nil {
				log.Warn().Err(err).Str("item", item.ID).Msg("batch item failed")
				results[i].Err = err
				return nil
			}
			results[i].Result = result
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info().Int("items", len(items)).Int("failed", failed).Msg("batch complete")
	return results
}

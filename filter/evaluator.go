package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithStrict makes evaluation errors fail Apply instead of skipping the item
func WithStrict(strict bool) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.strict = strict
	}
}

// ConcurrentEvaluator implements Evaluator, splitting large inputs into
// chunks evaluated in parallel.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	strict      bool
}

var _ Evaluator = (*ConcurrentEvaluator)(nil)

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply returns the items matching filter in their original order
func (e *ConcurrentEvaluator) Apply(ctx context.Context, filter CompiledFilter, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	// small inputs are not worth the goroutines
	if len(items) < e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return e.evaluateChunk(filter, items)
	}

	return e.evaluateConcurrent(ctx, filter, items)
}

func (e *ConcurrentEvaluator) evaluateChunk(filter CompiledFilter, items []Item) ([]Item, error) {
	matches := make([]Item, 0, len(items)/4)
	for _, item := range items {
		ok, err := filter.Match(item)
		if err != nil {
			if e.strict {
				return nil, err
			}
			continue
		}
		if ok {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, items []Item) ([]Item, error) {
	chunkSize := max(len(items)/e.workerCount, e.batchSize)
	chunks := (len(items) + chunkSize - 1) / chunkSize
	results := make([][]Item, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for idx := range chunks {
		start := idx * chunkSize
		end := min(start+chunkSize, len(items))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := e.evaluateChunk(filter, items[start:end])
			if err != nil {
				return err
			}
			results[idx] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]Item, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

package commonsense

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds the calls GetItems keeps in flight.
const DefaultBatchConcurrency = 5

// BatchResult contains the results of a GetItems call
type BatchResult struct {
	// Requested is the number of distinct ids fetched.
	Requested int
	Items     map[string]*Result
	Failed    []ItemError
}

// ItemError contains information about a failed item fetch
type ItemError struct {
	ID  string
	Err error
}

// Error implements the error interface
func (e ItemError) Error() string {
	return fmt.Sprintf("failed to get item %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e ItemError) Unwrap() error {
	return e.Err
}

// GetItems fetches several items of one type concurrently. Each fetch is an
// independent GetItem call; a failure does not cancel the others. Repeated
// ids are fetched once. Failed is ordered like the first occurrence of each id.
func (c *Client) GetItems(ctx context.Context, t ContentType, ids []string, opts Options) BatchResult {
	return c.GetItemsWithLimit(ctx, t, ids, opts, DefaultBatchConcurrency)
}

// GetItemsWithLimit is GetItems with at most limit calls in flight. A limit
// below one uses DefaultBatchConcurrency.
func (c *Client) GetItemsWithLimit(ctx context.Context, t ContentType, ids []string, opts Options, limit int) BatchResult {
	if limit < 1 {
		limit = DefaultBatchConcurrency
	}
	ids = uniqueIDs(ids)
	result := BatchResult{
		Requested: len(ids),
		Items:     make(map[string]*Result, len(ids)),
	}
	if len(ids) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	errs := make([]error, len(ids))
	var mu sync.Mutex

	for i, id := range ids {
		g.Go(func() error {
			res, err := c.GetItem(ctx, t, id, opts)
			if err != nil {
				errs[i] = err
				return nil // Don't stop on individual errors
			}
			mu.Lock()
			result.Items[id] = res
			mu.Unlock()
			return nil
		})
	}

	g.Wait()

	for i, err := range errs {
		if err != nil {
			result.Failed = append(result.Failed, ItemError{ID: ids[i], Err: err})
		}
	}

	return result
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

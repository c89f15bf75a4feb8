package catalog

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/trendscout/research-service/internal/scoring"
)

// maxConcurrentPages bounds in-flight page fetches. The shared token
// bucket still paces the individual requests; the semaphore only keeps
// memory and connection use flat for large page counts.
const maxConcurrentPages = 2

// SearchPages fetches several result pages and merges them, deduplicated
// by external ID with the earliest page winning. A failed page is skipped
// rather than failing the whole search; an error is returned only when
// every page fails.
func (c *Client) SearchPages(ctx context.Context, query string, pages int) ([]scoring.Product, error) {
	if pages < 1 {
		pages = 1
	}

	sem := semaphore.NewWeighted(maxConcurrentPages)
	var wg sync.WaitGroup
	var mu sync.Mutex

	type pageResult struct {
		page     int
		products []scoring.Product
	}
	var results []pageResult
	var firstErr error

	for page := 1; page <= pages; page++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			defer sem.Release(1)

			products, err := c.Search(ctx, query, page)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results = append(results, pageResult{page: page, products: products})
		}(page)
	}
	wg.Wait()

	if len(results) == 0 {
		if firstErr == nil {
			firstErr = ctx.Err()
		}
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool { return results[i].page < results[j].page })

	seen := make(map[string]bool)
	var merged []scoring.Product
	for _, r := range results {
		for _, p := range r.products {
			if seen[p.ExternalID] {
				continue
			}
			seen[p.ExternalID] = true
			merged = append(merged, p)
		}
	}
	return merged, nil
}

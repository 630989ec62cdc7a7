package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Aggregator fans Fetch out across the enabled sources and merges the piles
// into one deduplicated corpus with a deterministic order.
type Aggregator struct {
	Sources     []Source
	Timeout     time.Duration // per-source budget; 0 disables
	Concurrency int
	Logger      *slog.Logger
}

func NewAggregator(sources []Source) *Aggregator {
	return &Aggregator{
		Sources:     sources,
		Timeout:     5 * time.Minute,
		Concurrency: 4,
		Logger:      slog.Default(),
	}
}

// FetchAll collects every source inside a failure boundary and merges the
// piles in the order the sources were given, which is registration order.
// A source that errors or panics contributes an empty pile; the run itself
// never fails.
func (a *Aggregator) FetchAll(ctx context.Context, win Window, paramsByName map[string]Params) []Record {
	piles := make([][]Record, len(a.Sources))
	limit := a.Concurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, src := range a.Sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			piles[i] = a.fetchOne(ctx, src, win, paramsByName[src.Name()])
		}(i, src)
	}
	wg.Wait()
	return mergePiles(piles)
}

// fetchOne is the failure boundary around a single source.
func (a *Aggregator) fetchOne(ctx context.Context, src Source, win Window, params Params) (records []Record) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("source panicked", "source", src.Name(), "panic", r)
			records = nil
		}
	}()
	fctx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := src.Fetch(fctx, win, params)
	if err != nil {
		a.Logger.Error("source misconfigured", "source", src.Name(), "error", err)
		return nil
	}
	if res.Status == StatusUnavailable {
		a.Logger.Info("source unavailable", "source", src.Name())
		return nil
	}
	a.Logger.Info("source fetched",
		"source", src.Name(),
		"records", len(res.Records),
		"duration", time.Since(start).Round(time.Millisecond))
	return res.Records
}

// mergePiles concatenates the piles in order, keeping the first occurrence of
// every dedup key. Survivors keep their relative order; nothing is re-sorted,
// so earlier sources win ties and the output is stable across runs.
func mergePiles(piles [][]Record) []Record {
	seen := make(map[string]bool)
	var merged []Record
	for _, pile := range piles {
		for _, rec := range pile {
			key := rec.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, rec)
		}
	}
	return merged
}

package bearchat

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultWarmConcurrency is the number of translations run at once while
// warming when none is configured.
const DefaultWarmConcurrency = 4

// WarmConfig configures cache warming.
type WarmConfig struct {
	From        Language
	To          Language
	Concurrency int // Maximum concurrent remote translations (default: 4)
}

// WarmFailure records a phrase that could not be translated.
type WarmFailure struct {
	Text string
	Err  error
}

// WarmResult summarizes a warming run.
type WarmResult struct {
	Cached     int // Phrases already present in the cache
	Translated int // Phrases translated and written to the cache
	Skipped    int // Empty or duplicate phrases
	Failed     []WarmFailure
}

// Warm pre-translates phrases so later lookups hit the cache. Cache lookups
// run in parallel; misses are translated with bounded concurrency and written
// to the cache on success. Failures are collected, not returned. The only
// error is ctx's.
func Warm(ctx context.Context, translator RemoteTranslator, cache TranslationCache, phrases []string, cfg WarmConfig) (*WarmResult, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultWarmConcurrency
	}
	model := translator.ModelName()
	result := &WarmResult{}

	// Deduplicate by cache key, preserving order
	var unique []string
	seen := make(map[string]bool)
	for _, text := range phrases {
		key := CacheKey(text, cfg.From, cfg.To)
		if (TranslationRequest{Text: text}).IsEmpty() || seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true
		unique = append(unique, text)
	}

	// Parallel cache lookup
	hits := make([]bool, len(unique))
	var wg sync.WaitGroup
	for i, text := range unique {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			_, hits[i] = cache.Get(ctx, text, cfg.From, cfg.To, model)
		}(i, text)
	}
	wg.Wait()

	var misses []string
	for i, text := range unique {
		if hits[i] {
			result.Cached++
		} else {
			misses = append(misses, text)
		}
	}

	// Translate cache misses
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, text := range misses {
		text := text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := translator.Translate(gctx, TranslationRequest{Text: text, From: cfg.From, To: cfg.To})

			mu.Lock()
			defer mu.Unlock()
			if res.Err != nil {
				result.Failed = append(result.Failed, WarmFailure{Text: text, Err: res.Err})
				return nil
			}
			cache.Set(ctx, text, cfg.From, cfg.To, res.Text, model)
			result.Translated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	return result, ctx.Err()
}

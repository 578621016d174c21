package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel fetches
	MaxConcurrency int `koanf:"max_concurrency" validate:"gte=1,lte=64"`

	// Timeout bounds each single fetch
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// DefaultConfig returns 5 workers with a 10s per-item timeout.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 5,
		Timeout:        10 * time.Second,
	}
}

// Result is the outcome for one key.
type Result[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// FetchFunc resolves a single key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// FetchAll runs fetch for every key using at most cfg.MaxConcurrency workers.
// The returned slice has one Result per key, in input order. Keys not
// processed because ctx was cancelled carry ctx.Err().
func FetchAll[K comparable, V any](ctx context.Context, keys []K, cfg Config, fetch FetchFunc[K, V]) []Result[K, V] {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	results := make([]Result[K, V], len(keys))
	if len(keys) == 0 {
		return results
	}

	start := time.Now()
	workers := cfg.MaxConcurrency
	if workers > len(keys) {
		workers = len(keys)
	}

	// Fill queue with indices so workers write to distinct slots.
	queue := make(chan int, len(keys))
	for i := range keys {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker(ctx, w, keys, queue, results, cfg, fetch, &wg)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	log.Debug().
		Int("keys", len(keys)).
		Int("workers", workers).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return results
}

// worker processes indices from the queue
func worker[K comparable, V any](ctx context.Context, workerID int, keys []K, queue <-chan int, results []Result[K, V], cfg Config, fetch FetchFunc[K, V], wg *sync.WaitGroup) {
	defer wg.Done()
	processed := 0

	for i := range queue {
		results[i].Key = keys[i]

		// Check context cancellation
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		itemCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		value, err := fetch(itemCtx, keys[i])
		cancel()

		if err != nil {
			log.Debug().
				Err(err).
				Int("worker_id", workerID).
				Interface("key", keys[i]).
				Msg("Batch item failed")
		}
		results[i].Value = value
		results[i].Err = err
		processed++
	}

	if processed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("processed", processed).
			Msg("Worker completed")
	}
}

package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const DefaultReindexInterval = 5 * time.Minute

// Reindexer rebuilds the search index from the event store
type Reindexer interface {
	ReindexAll(ctx context.Context) (int, error)
}

// SearchReindexJob periodically pushes every event into the search index so
// documents missed by event.upserted messages converge
type SearchReindexJob struct {
	indexer  Reindexer
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
	running  atomic.Bool
	runs     atomic.Int64
}

// NewSearchReindexJob creates a new search reindex job
func NewSearchReindexJob(indexer Reindexer, interval time.Duration) *SearchReindexJob {
	if interval <= 0 {
		interval = DefaultReindexInterval
	}
	return &SearchReindexJob{
		indexer:  indexer,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start runs a reindex immediately and then on every tick
func (j *SearchReindexJob) Start(ctx context.Context) {
	slog.Info("Starting search reindex job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	go j.reindex(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.reindex(ctx)
			case <-ctx.Done():
				return
			case <-j.done:
				slog.Info("Search reindex job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *SearchReindexJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// Runs reports how many reindex passes have completed
func (j *SearchReindexJob) Runs() int64 {
	return j.runs.Load()
}

// reindex skips the tick if the previous pass is still running
func (j *SearchReindexJob) reindex(ctx context.Context) {
	if !j.running.CompareAndSwap(false, true) {
		slog.Debug("Previous reindex still running, skipping tick")
		return
	}
	defer j.running.Store(false)

	started := time.Now()
	count, err := j.indexer.ReindexAll(ctx)
	if err != nil {
		slog.Error("Failed to reindex events", "error", err)
		return
	}
	j.runs.Add(1)

	slog.Info("Search index refreshed",
		"events", count,
		"elapsed_time", time.Since(started).String())
}

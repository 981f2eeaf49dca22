package objectstore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// AddBatch uploads items to bucket with at most Config.UploadConcurrency
// uploads in flight, and returns one outcome per item.
//
// Outcomes are in completion order, not input order; each carries the item's
// key for correlation. A failed item never stops the others: every item is
// attempted at most once and yields exactly one outcome.
//
// A batch with more than Config.MaxBatchSize items is rejected whole: the
// result is a single outcome whose error has KindBatchLimit, and nothing is
// uploaded.
//
// ctx is shared by every upload. Once it is done, items that have not started
// fail with the context error, and items in flight either fail the same way or
// finish normally if they complete first.
//
// Example:
//
//	outcome := client.AddBatch(ctx, "media", []storetypes.UploadItem{
//	    {Key: "a.jpg", Body: a},
//	    {Key: "b.jpg", Body: b},
//	})
//	for _, o := range outcome.Failed() {
//	    log.Printf("upload of %s failed: %v", o.Key, o.Err)
//	}
func (c *Client) AddBatch(
	ctx context.Context,
	bucket string,
	items []storetypes.UploadItem,
	opts ...storetypes.UploadOption,
) storetypes.BatchOutcome {
	start := time.Now()

	if len(items) > c.cfg.MaxBatchSize {
		err := errors.NewBatchLimitError(bucket, len(items), c.cfg.MaxBatchSize)
		if c.logger != nil {
			c.logger.ErrorContext(ctx, "batch upload rejected",
				"bucket", bucket,
				"items", len(items),
				"max_batch_size", c.cfg.MaxBatchSize)
		}
		c.metrics.Observe(errors.OpAddBatch, start, err)
		return storetypes.BatchOutcome{{Err: err}}
	}

	c.metrics.ObserveBatch(len(items))
	if c.logger != nil {
		c.logger.InfoContext(ctx, "batch upload started",
			"bucket", bucket,
			"items", len(items),
			"concurrency", c.cfg.UploadConcurrency)
	}

	outcome := c.runBatch(ctx, bucket, items, uploadConfig(opts))

	if c.logger != nil {
		c.logger.InfoContext(ctx, "batch upload finished",
			"bucket", bucket,
			"items", len(items),
			"failed", len(outcome.Failed()),
			"duration", time.Since(start))
	}
	c.metrics.Observe(errors.OpAddBatch, start, nil)
	return outcome
}

// runBatch is the sliding window: a weighted semaphore admits the next item
// whenever an upload completes, and every result lands on a channel sized
// for the whole batch, so arrival order is completion order.
func (c *Client) runBatch(
	ctx context.Context,
	bucket string,
	items []storetypes.UploadItem,
	cfg storetypes.UploadConfig,
) storetypes.BatchOutcome {
	sem := semaphore.NewWeighted(int64(c.cfg.UploadConcurrency))
	results := make(chan storetypes.UploadOutcome, len(items))
	var wg sync.WaitGroup

	for _, item := range items {
		// Acquire may succeed on a done context when a slot is free.
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			results <- storetypes.UploadOutcome{
				Key: item.Key,
				Err: errors.NewTransportError(errors.OpAddBatch, bucket, item.Key, err),
			}
			continue
		}

		wg.Add(1)
		go func(item storetypes.UploadItem) {
			defer wg.Done()
			defer sem.Release(1)

			c.metrics.UploadStarted()
			defer c.metrics.UploadFinished()

			start := time.Now()
			url, err := c.add(ctx, bucket, item.Key, item.Body, cfg)
			c.metrics.Observe(errors.OpAdd, start, err)
			results <- storetypes.UploadOutcome{Key: item.Key, URL: url, Err: err}
		}(item)
	}

	wg.Wait()
	close(results)

	outcome := make(storetypes.BatchOutcome, 0, len(items))
	for r := range results {
		outcome = append(outcome, r)
	}
	return outcome
}

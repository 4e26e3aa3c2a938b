package batch

import (
	"context"
	"sync/atomic"
	"time"

	apperrors "payrecon/internal/shared_kernel/errors"
)

// Progress is emitted after every completed batch. EstimatedSecondsRemaining
// stays nil until at least two batches have completed, because a single
// sample is not enough to average over.
type Progress struct {
	TotalItems                int
	ProcessedItems            int
	CurrentBatch              int
	TotalBatches              int
	PercentComplete           float64
	EstimatedSecondsRemaining *float64
}

type Options struct {
	// InterBatchDelay pauses between batches, never before the first or
	// after the last one. Zero disables the pause.
	InterBatchDelay time.Duration
	// BatchTimeout bounds a single apply call. Zero disables the bound.
	BatchTimeout time.Duration
}

// Runner splits an item list into fixed size chunks and feeds them to a
// caller supplied apply function, strictly sequentially. One Runner serves
// one Run invocation; Cancel may be called from any goroutine and takes
// effect at the next chunk boundary, never mid chunk.
type Runner[T any, R any] struct {
	options   Options
	cancelled atomic.Bool
}

func NewRunner[T any, R any](options Options) *Runner[T, R] {
	return &Runner[T, R]{options: options}
}

func (r *Runner[T, R]) Cancel() {
	r.cancelled.Store(true)
}

func (r *Runner[T, R]) Cancelled() bool {
	return r.cancelled.Load()
}

// Run processes items in chunks of batchSize. Results append in input order;
// onProgress, when non nil, fires after every batch. Cancellation (explicit
// or via ctx) returns the results accumulated so far without an error. Any
// apply error aborts the remaining batches and propagates unmodified.
func (r *Runner[T, R]) Run(
	ctx context.Context,
	items []T,
	batchSize int,
	apply func(ctx context.Context, chunk []T, batchIndex int) ([]R, *apperrors.AppError),
	onProgress func(Progress),
) ([]R, *apperrors.AppError) {
	if apply == nil {
		return nil, apperrors.NewInternal(
			"batch_apply_fn_missing",
			"batch apply function is required",
			nil,
		)
	}
	if batchSize <= 0 {
		return nil, apperrors.NewValidation(
			"batch_size_invalid",
			"batch size must be greater than zero",
			map[string]any{"batch_size": batchSize},
		)
	}

	totalItems := len(items)
	totalBatches := (totalItems + batchSize - 1) / batchSize

	results := make([]R, 0, totalItems)
	processed := 0
	durations := make([]time.Duration, 0, totalBatches)

	for batchIndex := 0; batchIndex < totalBatches; batchIndex++ {
		if r.Cancelled() || ctx.Err() != nil {
			return results, nil
		}

		start := batchIndex * batchSize
		end := start + batchSize
		if end > totalItems {
			end = totalItems
		}
		chunk := items[start:end]

		startedAt := time.Now()
		chunkResults, appErr := r.applyChunk(ctx, chunk, batchIndex, apply)
		if appErr != nil {
			return nil, appErr
		}
		durations = append(durations, time.Since(startedAt))

		results = append(results, chunkResults...)
		processed += len(chunk)

		if onProgress != nil {
			onProgress(Progress{
				TotalItems:                totalItems,
				ProcessedItems:            processed,
				CurrentBatch:              batchIndex + 1,
				TotalBatches:              totalBatches,
				PercentComplete:           float64(processed) / float64(totalItems) * 100,
				EstimatedSecondsRemaining: estimateSecondsRemaining(durations, totalBatches-batchIndex-1),
			})
		}

		if r.options.InterBatchDelay > 0 && batchIndex < totalBatches-1 {
			if !r.pause(ctx) {
				return results, nil
			}
		}
	}

	return results, nil
}

func (r *Runner[T, R]) applyChunk(
	ctx context.Context,
	chunk []T,
	batchIndex int,
	apply func(ctx context.Context, chunk []T, batchIndex int) ([]R, *apperrors.AppError),
) ([]R, *apperrors.AppError) {
	if r.options.BatchTimeout <= 0 {
		return apply(ctx, chunk, batchIndex)
	}

	chunkCtx, cancel := context.WithTimeout(ctx, r.options.BatchTimeout)
	defer cancel()
	return apply(chunkCtx, chunk, batchIndex)
}

func (r *Runner[T, R]) pause(ctx context.Context) bool {
	timer := time.NewTimer(r.options.InterBatchDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func estimateSecondsRemaining(durations []time.Duration, batchesRemaining int) *float64 {
	if len(durations) < 2 {
		return nil
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	average := total / time.Duration(len(durations))

	seconds := (average * time.Duration(batchesRemaining)).Seconds()
	return &seconds
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"entity-pipeline/internal/observability"
)

// ParallelProcessor fans a batch of documents out over a WorkerPool.
type ParallelProcessor struct {
	processor Processor
	workers   int
	logger    *zap.Logger
	observer  *observability.StandardObserver
}

// ProcessingStats summarizes a batch.
type ProcessingStats struct {
	TotalDocuments     int
	ProcessedDocuments int
	FailedDocuments    int
	TotalEntities      int
	TotalDuration      time.Duration
	WorkerCount        int
	AvgDocumentTime    time.Duration
}

// ProgressCallback is called after each document completes.
type ProgressCallback func(completed, total int, currentFile string)

// PanicError is returned for a document whose processing panicked.
type PanicError struct {
	FilePath string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing %q: %v", e.FilePath, e.Value)
}

// NewParallelProcessor creates a processor with the given worker count;
// zero or less means GOMAXPROCS. logger may be nil.
func NewParallelProcessor(processor Processor, workers int, logger *zap.Logger) *ParallelProcessor {
	logger = observability.OrNop(logger)
	return &ParallelProcessor{
		processor: processor,
		workers:   workers,
		logger:    logger,
		observer:  observability.NewStandardObserver(logger, nil),
	}
}

// ProcessDocuments processes jobs and returns one result per job in input
// order. Failed documents carry their error; the batch itself only fails
// when ctx is canceled, in which case jobs never submitted have a nil result.
func (pp *ParallelProcessor) ProcessDocuments(ctx context.Context, jobs []*Job) ([]*Result, *ProcessingStats, error) {
	return pp.ProcessDocumentsWithProgress(ctx, jobs, nil)
}

// ProcessDocumentsWithProgress is ProcessDocuments with a progress callback.
func (pp *ParallelProcessor) ProcessDocumentsWithProgress(ctx context.Context, jobs []*Job, progressCallback ProgressCallback) ([]*Result, *ProcessingStats, error) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_documents", "batch")

	workers := pp.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workerPool := NewWorkerPool(min(workers, max(len(jobs), 1)), pp.processor, pp.observer)
	workerPool.Start(ctx)

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer workerPool.Close()
		for i, job := range jobs {
			job.Index = i
			if !workerPool.Submit(ctx, job) {
				return
			}
		}
	}()

	results := make([]*Result, len(jobs))
	stats := &ProcessingStats{TotalDocuments: len(jobs), WorkerCount: workerPool.Workers()}
	var totalDuration time.Duration
	completed := 0

	for result := range workerPool.Results() {
		results[result.Index] = result
		completed++
		totalDuration += result.Duration

		if result.Error != nil {
			stats.FailedDocuments++
			pp.logger.Warn("document failed", zap.String("file", result.FilePath), zap.Error(result.Error))
		} else {
			stats.ProcessedDocuments++
			stats.TotalEntities += len(result.Result.Entities)
		}

		if progressCallback != nil {
			progressCallback(completed, len(jobs), result.FilePath)
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgDocumentTime = totalDuration / time.Duration(max(completed, 1))
	finishTiming(ctx.Err() == nil,
		zap.Int("total_documents", stats.TotalDocuments),
		zap.Int("processed_documents", stats.ProcessedDocuments),
		zap.Int("total_entities", stats.TotalEntities),
		zap.Int("worker_count", stats.WorkerCount))

	if err := ctx.Err(); err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

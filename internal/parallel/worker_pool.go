// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/pipeline"
)

// Processor runs one document through the pipeline. *pipeline.Pipeline
// satisfies it.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document) (*pipeline.Result, error)
}

// WorkerPool processes documents on a fixed number of goroutines.
type WorkerPool struct {
	workers   int
	processor Processor
	jobs      chan *Job
	results   chan *Result
	wg        sync.WaitGroup
	observer  *observability.StandardObserver
}

// Job represents a document processing task
type Job struct {
	Index    int
	FilePath string
	Document pipeline.Document
}

// Result represents processing results
type Result struct {
	Index    int
	FilePath string
	Result   *pipeline.Result
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a worker pool. A non-positive worker count uses
// GOMAXPROCS; observer may be nil.
func NewWorkerPool(workers int, processor Processor, observer *observability.StandardObserver) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{
		workers:   workers,
		processor: processor,
		jobs:      make(chan *Job, workers*2),
		results:   make(chan *Result, workers*2),
		observer:  observer,
	}
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes worker goroutines. They stop once Close is called and
// the queue drains.
func (wp *WorkerPool) Start(ctx context.Context) {
	for range wp.workers {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()
}

// Submit adds a job to the queue. It gives up when ctx is done.
func (wp *WorkerPool) Submit(ctx context.Context, job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted.
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Results returns the results channel; it is closed after the last job.
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()
	for job := range wp.jobs {
		wp.results <- wp.processJob(ctx, job)
	}
}

// processJob runs one document, turning a panic into an error result.
func (wp *WorkerPool) processJob(ctx context.Context, job *Job) (result *Result) {
	start := time.Now()
	result = &Result{Index: job.Index, FilePath: job.FilePath}

	var finishTiming func(bool, ...zap.Field)
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.Document.ID)
	}
	defer func() {
		if r := recover(); r != nil {
			result.Error = &PanicError{FilePath: job.FilePath, Value: r}
		}
		result.Duration = time.Since(start)
		if finishTiming != nil {
			finishTiming(result.Error == nil, zap.String("file", job.FilePath))
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}
	result.Result, result.Error = wp.processor.Process(ctx, job.Document)
	return result
}

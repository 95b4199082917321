package orchestrator

import (
	"context"
	"runtime"
	"sync"
)

// intervalJob is one interval queued for a run
type intervalJob struct {
	index    int
	interval string
}

// WorkerPool runs interval jobs on a fixed number of goroutines
type WorkerPool struct {
	workerCount int
	process     func(ctx context.Context, interval string) IntervalResult

	jobQueue    chan intervalJob
	resultQueue chan indexedResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

type indexedResult struct {
	index  int
	result IntervalResult
}

// NewWorkerPool creates a pool; workerCount <= 0 uses one worker per CPU
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int, process func(ctx context.Context, interval string) IntervalResult) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		process:     process,
		jobQueue:    make(chan intervalJob, jobBufferSize),
		resultQueue: make(chan indexedResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the queue and waits for the workers to drain it
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob queues an interval
func (wp *WorkerPool) SubmitJob(index int, interval string) error {
	select {
	case wp.jobQueue <- intervalJob{index: index, interval: interval}:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		res := IntervalResult{Interval: job.interval}
		if err := wp.ctx.Err(); err != nil {
			res.Error = err
		} else {
			res = wp.process(wp.ctx, job.interval)
		}
		wp.resultQueue <- indexedResult{index: job.index, result: res}
	}
}

// RunAll runs every interval and returns the results in input order
func (wp *WorkerPool) RunAll(intervals []string) []IntervalResult {
	results := make([]IntervalResult, len(intervals))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range wp.resultQueue {
			results[r.index] = r.result
		}
	}()

	wp.Start()
	for i, interval := range intervals {
		if err := wp.SubmitJob(i, interval); err != nil {
			results[i] = IntervalResult{Interval: interval, Error: err}
		}
	}
	wp.Stop()
	<-done
	return results
}

package pagepool

import (
	"context"
	"sync"
	"time"

	"pagescraper/pkg/logger"
)

// ProcessFunc handles one page and returns its result value
type ProcessFunc[R any] func(ctx context.Context, page int) R

// job carries the page number and its position in the submission order
type job struct {
	seq  int
	page int
}

type result[R any] struct {
	seq   int
	value R
}

// WorkerPool hands whole pages to a fixed number of workers. A page is never
// split: one worker probes it from first index to last.
type WorkerPool[R any] struct {
	numWorkers  int
	process     ProcessFunc[R]
	jobQueue    chan job
	resultQueue chan result[R]
	wg          sync.WaitGroup
	logger      logger.Logger
}

// NewWorkerPool creates a pool; numWorkers below 1 is treated as 1
func NewWorkerPool[R any](numWorkers int, process ProcessFunc[R], log logger.Logger) *WorkerPool[R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool[R]{
		numWorkers:  numWorkers,
		process:     process,
		jobQueue:    make(chan job, numWorkers*2),
		resultQueue: make(chan result[R], numWorkers),
		logger:      log,
	}
}

// Run processes pages and returns their results in the order pages were given.
// Pages still queued when ctx ends are handed to the ProcessFunc all the
// same, so it decides what a cancelled page looks like. A pool runs once.
func (wp *WorkerPool[R]) Run(ctx context.Context, pages []int) []R {
	logger.LogComponentStart(wp.logger, "pagepool", map[string]interface{}{
		"num_workers": wp.numWorkers,
		"pages":       len(pages),
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	go func() {
		for seq, page := range pages {
			wp.jobQueue <- job{seq: seq, page: page}
		}
		close(wp.jobQueue)
	}()

	go func() {
		wp.wg.Wait()
		close(wp.resultQueue)
	}()

	out := make([]R, len(pages))
	for res := range wp.resultQueue {
		out[res.seq] = res.value
	}

	wp.logger.Debug("Page pool stopped")
	return out
}

func (wp *WorkerPool[R]) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for j := range wp.jobQueue {
		start := time.Now()
		value := wp.process(ctx, j.page)

		wp.logger.DebugWithFields("Worker finished page", map[string]interface{}{
			"worker_id": id,
			"page":      j.page,
			"duration":  time.Since(start),
		})
		wp.resultQueue <- result[R]{seq: j.seq, value: value}
	}
}

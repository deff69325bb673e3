package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hashclip/pkg/candidate"
	"hashclip/pkg/logger"
	"hashclip/pkg/media"
	"hashclip/pkg/storage"
)

// Status is the result of processing one candidate
type Status string

const (
	StatusDownloaded      Status = "downloaded"
	StatusSkippedLowViews Status = "skipped_low_views"
	StatusFailed          Status = "failed"
)

// DownloadJob is one candidate and its position in the input list
type DownloadJob struct {
	Index     int
	Candidate candidate.Candidate
}

// DownloadResult is the outcome of a single job
type DownloadResult struct {
	Job       DownloadJob
	Status    Status
	ViewCount int64
	Path      string
	Error     error
	Duration  time.Duration
}

// MediaProber resolves view counts without downloading
type MediaProber interface {
	Probe(ctx context.Context, url string) (media.Metadata, error)
}

// MediaFetcher downloads media to an output base path
type MediaFetcher interface {
	Fetch(ctx context.Context, url, base string) (media.Metadata, error)
}

// FileNamer hands out output base paths for file stems. Plan sees the whole
// batch before any job runs, so names do not depend on completion order.
type FileNamer interface {
	Plan(candidates []candidate.Candidate)
	BasePath(stem, postID string) string
}

// WorkerPool runs probe, decide and transfer for candidates concurrently.
// A failing job never cancels its siblings.
type WorkerPool struct {
	numWorkers  int
	minViews    int64
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	prober      MediaProber
	fetcher     MediaFetcher
	namer       FileNamer
	logger      logger.Logger
}

// NewWorkerPool creates a new worker pool. Posts with fewer than minViews
// views are skipped without a transfer.
func NewWorkerPool(
	numWorkers int,
	minViews int64,
	prober MediaProber,
	fetcher MediaFetcher,
	namer FileNamer,
	log logger.Logger,
) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		minViews:    minViews,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		prober:      prober,
		fetcher:     fetcher,
		namer:       namer,
		logger:      log,
	}
}

// Start launches the workers. Jobs already queued when ctx is cancelled
// still produce a failed result.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.ctx, wp.cancel = context.WithCancel(ctx)

	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes Results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Debug("Worker pool stopped")
}

// Submit adds a job to the queue
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// Run processes every candidate exactly once and returns one result per
// candidate. A pool runs once; build a new one for the next batch. Results are
// in input order. onResult, if set, is called from a single
// goroutine as each result arrives.
func (wp *WorkerPool) Run(ctx context.Context, candidates []candidate.Candidate, onResult func(DownloadResult)) []DownloadResult {
	results := make([]DownloadResult, len(candidates))
	if len(candidates) == 0 {
		return results
	}

	wp.namer.Plan(candidates)
	wp.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range wp.Results() {
			results[result.Job.Index] = result
			if onResult != nil {
				onResult(result)
			}
		}
	}()

	var rejected []DownloadResult
	for i, c := range candidates {
		job := DownloadJob{Index: i, Candidate: c}
		if err := wp.Submit(job); err != nil {
			rejected = append(rejected, DownloadResult{Job: job, Status: StatusFailed, Error: err})
		}
	}

	wp.Stop()
	<-done

	for _, result := range rejected {
		results[result.Job.Index] = result
		if onResult != nil {
			onResult(result)
		}
	}

	return results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.resultQueue <- wp.processJob(job, id)
	}
}

// processJob probes the candidate, skips it below the view threshold and
// otherwise downloads it under its deterministic name
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	c := job.Candidate
	result := DownloadResult{Job: job, Status: StatusFailed}

	fields := map[string]interface{}{
		"worker_id": workerID,
		"url":       c.URL,
		"author":    c.Author,
	}

	if err := wp.ctx.Err(); err != nil {
		result.Error = fmt.Errorf("run cancelled before processing: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	wp.logger.DebugWithFields("Worker processing candidate", fields)

	meta, err := wp.prober.Probe(wp.ctx, c.URL)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.ViewCount = meta.ViewCount

	if meta.ViewCount < wp.minViews {
		result.Status = StatusSkippedLowViews
		result.Duration = time.Since(start)
		return result
	}

	base := wp.namer.BasePath(storage.FileStem(c.Author, c.CreatedAt, c.Likes, meta.ViewCount), c.ID)

	fetched, err := wp.fetcher.Fetch(wp.ctx, c.URL, base)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	result.Status = StatusDownloaded
	result.Path = fetched.Path
	if result.Path == "" {
		result.Path = storage.PathFor(base, meta.Ext)
	}
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed candidate", map[string]interface{}{
		"worker_id": workerID,
		"url":       c.URL,
		"path":      result.Path,
		"duration":  result.Duration,
	})

	return result
}

package downloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"fotofetch/pkg/logger"
)

// Status describes the outcome of a download job
type Status int

const (
	StatusFailed Status = iota
	StatusDownloaded
	StatusSkipped
)

// String returns a human readable status name
func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// DownloadJob represents a single image transfer task
type DownloadJob struct {
	URL      string
	FileName string
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Status   Status
	Error    error
	Duration time.Duration
	Size     int64
}

// ImageFetcher streams image bytes from a URL
type ImageFetcher interface {
	GetStream(ctx context.Context, url string) (io.ReadCloser, error)
}

// ImageStorage persists images and answers duplicate checks
type ImageStorage interface {
	IsDownloaded(filename string) bool
	Save(r io.Reader, filename string) error
}

// WorkerPool manages concurrent download workers. A job that fails only
// fails its own result; the pool keeps draining the queue.
type WorkerPool struct {
	numWorkers      int
	jobQueue        chan DownloadJob
	resultQueue     chan DownloadResult
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
	client          ImageFetcher
	storageManager  ImageStorage
	downloadTimeout time.Duration
	logger          logger.Logger
}

// NewWorkerPool creates a new download worker pool. downloadTimeout bounds
// each individual transfer, not the run as a whole.
func NewWorkerPool(
	numWorkers int,
	client ImageFetcher,
	storageManager ImageStorage,
	downloadTimeout time.Duration,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:      numWorkers,
		jobQueue:        make(chan DownloadJob, numWorkers*2),
		resultQueue:     make(chan DownloadResult, numWorkers),
		ctx:             ctx,
		cancel:          cancel,
		client:          client,
		storageManager:  storageManager,
		downloadTimeout: downloadTimeout,
		logger:          log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for workers to drain it, then closes
// the result queue
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Info("Worker pool stopped")
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"url":  job.URL,
			"file": job.FileName,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// countingReader tracks how many bytes passed through
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// processJob handles a single download job. Files already present are
// skipped without issuing any network request.
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{
		Job:    job,
		Status: StatusFailed,
	}

	if wp.storageManager.IsDownloaded(job.FileName) {
		wp.logger.DebugWithFields("Image already downloaded", map[string]interface{}{
			"worker_id": workerID,
			"file":      job.FileName,
		})
		result.Status = StatusSkipped
		result.Duration = time.Since(start)
		return result
	}

	ctx, cancel := context.WithTimeout(wp.ctx, wp.downloadTimeout)
	defer cancel()

	stream, err := wp.client.GetStream(ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to download image", map[string]interface{}{
			"worker_id": workerID,
			"url":       job.URL,
			"error":     err.Error(),
		})

		return result
	}
	defer stream.Close()

	counted := &countingReader{r: stream}
	if err := wp.storageManager.Save(counted, job.FileName); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Size = counted.n
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save image", map[string]interface{}{
			"worker_id": workerID,
			"file":      job.FileName,
			"error":     err.Error(),
		})

		return result
	}

	result.Status = StatusDownloaded
	result.Size = counted.n
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed job", map[string]interface{}{
		"worker_id": workerID,
		"file":      job.FileName,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}

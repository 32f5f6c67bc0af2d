// Package jobrunner drives the durable, at-least-once processing queue
// that runs the image variant pipeline for assembled uploads. A bounded
// pool of workers consumes upload ids; a per-upload row lock plus an
// in-process singleflight group together guarantee at most one attempt
// per upload_id executes at a time.
package jobrunner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/catalogforge/imgingest/internal/logging"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// Processor runs the processing job body for one upload attempt.
type Processor interface {
	Run(ctx context.Context, uploadID, sourcePath string) error
}

// Runner owns the queue and worker pool.
type Runner struct {
	uploads       *store.UploadRepository
	jobs          *store.JobRepository
	processor     Processor
	log           *logging.Logger
	workers       int
	attemptTimeout time.Duration

	sf    singleflight.Group
	queue chan string
	wg    sync.WaitGroup
	once  sync.Once
}

// New builds a Runner. attemptTimeout bounds a single attempt (300s per
// the processing-job contract); workers bounds how many attempts run
// concurrently across distinct uploads.
func New(uploads *store.UploadRepository, jobs *store.JobRepository, processor Processor, log *logging.Logger, workers int, attemptTimeout time.Duration) *Runner {
	return &Runner{
		uploads:        uploads,
		jobs:           jobs,
		processor:      processor,
		log:            log,
		workers:        workers,
		attemptTimeout: attemptTimeout,
		queue:          make(chan string, 1024),
	}
}

// Start launches the worker pool. It returns immediately; workers run
// until ctx is canceled.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Stop closes the queue and waits for in-flight attempts to drain.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.queue) })
	r.wg.Wait()
}

// Enqueue schedules uploadID for a processing attempt. Safe to call
// from the assembler or from a failed attempt that still has retries
// left.
func (r *Runner) Enqueue(uploadID string) {
	select {
	case r.queue <- uploadID:
	default:
		// Queue full: run in its own goroutine rather than drop the job,
		// since at-least-once execution must not silently lose work.
		go func() { r.queue <- uploadID }()
	}
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case uploadID, ok := <-r.queue:
			if !ok {
				return
			}
			r.attempt(ctx, uploadID)
		}
	}
}

// attempt runs a single claimed attempt for uploadID. The singleflight
// group collapses concurrent Enqueue calls for the same id within this
// process; the row lock in JobRepository.TryLock extends that
// guarantee across processes.
func (r *Runner) attempt(ctx context.Context, uploadID string) {
	_, _, _ = r.sf.Do(uploadID, func() (interface{}, error) {
		job, claimed, err := r.jobs.TryLock(ctx, uploadID)
		if err != nil {
			r.log.WithUpload(uploadID).Error().Err(err).Msg("failed to claim job")
			return nil, err
		}
		if !claimed {
			return nil, nil
		}
		observability.GetObserver().OnJobAttempt(ctx, uploadID, job.AttemptsUsed, job.MaxAttempts)

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()

		s, err := r.uploads.Get(attemptCtx, uploadID)
		if err != nil {
			r.jobs.Finish(ctx, uploadID, false, err)
			return nil, err
		}

		attemptStart := time.Now()
		runErr := r.processor.Run(attemptCtx, uploadID, s.Path)
		errMsg := ""
		if runErr != nil {
			errMsg = runErr.Error()
		}
		observability.GetObserver().OnJobResult(ctx, uploadID, job.AttemptsUsed, time.Since(attemptStart), runErr == nil, errMsg)
		if err := r.jobs.Finish(ctx, uploadID, runErr == nil, runErr); err != nil {
			r.log.WithUpload(uploadID).Error().Err(err).Msg("failed to record job outcome")
		}

		if runErr != nil {
			r.log.WithUpload(uploadID).Warn().Err(runErr).Int("attempts_used", job.AttemptsUsed).Msg("processing attempt failed")
			if j, getErr := r.jobs.Get(ctx, uploadID); getErr == nil && j.Status == store.JobPending {
				r.Enqueue(uploadID)
			}
		}
		return nil, runErr
	})
}

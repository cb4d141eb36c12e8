// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch fans page-range jobs out to conversion workers with
// bounded parallelism and tracks per-job completion.
// Implements: prd002-dispatch (R1-R4);
//
//	docs/ARCHITECTURE § Dispatch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearclown/markpdfdown/internal/worker"
	"github.com/clearclown/markpdfdown/pkg/types"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is one dispatched unit of work: one page range, one worker invocation,
// one part file. Jobs are never retried within a run.
type Job struct {
	Range    types.PageRange
	PartPath string
	Whole    bool
	Status   Status
	Err      error
	Elapsed  time.Duration
}

// Result summarizes a dispatch pass over all jobs.
type Result struct {
	Jobs      []Job
	Succeeded int
	Failed    int

	// PeakRunning is the high-water mark of concurrently running jobs.
	PeakRunning int
}

// Completed returns the number of jobs that reached a terminal state.
func (r Result) Completed() int {
	return r.Succeeded + r.Failed
}

// Dispatcher runs jobs through an Invoker, at most MaxParallel at a time.
// Job start order follows range order; completion order is unconstrained.
type Dispatcher struct {
	Invoker     worker.Invoker
	MaxParallel int

	// StartDelay spaces out consecutive job starts (0 disables). Smooths
	// burst load against rate-limited providers behind the worker.
	StartDelay time.Duration

	// JobTimeout bounds one worker invocation (0 disables). A job that
	// exceeds it is marked failed and its slot reclaimed; the run goes on.
	JobTimeout time.Duration

	Log      *zap.Logger
	Progress io.Writer
}

// runState tracks live counters for one dispatch pass. Each job owns a
// disjoint slot in the jobs slice, so these counters are the only state
// shared across job goroutines.
type runState struct {
	running   atomic.Int64
	peak      atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

func (s *runState) started() {
	r := s.running.Add(1)
	for {
		p := s.peak.Load()
		if r <= p || s.peak.CompareAndSwap(p, r) {
			return
		}
	}
}

func (s *runState) finished(ok bool) {
	s.running.Add(-1)
	if ok {
		s.succeeded.Add(1)
	} else {
		s.failed.Add(1)
	}
}

// Run executes all jobs and blocks until every job reaches a terminal state.
// Individual worker failures are recorded on the job, not returned: the run
// continues past them so one bad range cannot abort the rest. Cancelling ctx
// stops admission; jobs that never started are marked failed so the result
// still accounts for every job.
func (d *Dispatcher) Run(ctx context.Context, inputPath string, jobs []Job) Result {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	progress := d.Progress
	if progress == nil {
		progress = io.Discard
	}

	state := &runState{}
	total := len(jobs)

	var g errgroup.Group
	g.SetLimit(d.MaxParallel)

	for i := range jobs {
		if i > 0 && d.StartDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.StartDelay):
			}
		}

		job := &jobs[i]
		if ctx.Err() != nil {
			d.markNotStarted(job, ctx.Err(), state, total, progress)
			continue
		}

		g.Go(func() error {
			d.runJob(ctx, inputPath, job, state, total, progress, log)
			return nil
		})
	}

	_ = g.Wait()

	return Result{
		Jobs:        jobs,
		Succeeded:   int(state.succeeded.Load()),
		Failed:      int(state.failed.Load()),
		PeakRunning: int(state.peak.Load()),
	}
}

func (d *Dispatcher) markNotStarted(job *Job, cause error, state *runState, total int, w io.Writer) {
	job.Status = StatusFailed
	job.Err = fmt.Errorf("not started: %w", cause)
	state.failed.Add(1)
	fmt.Fprintf(w, "failed:    %s (%v)\n", jobLabel(job, total), job.Err)
}

func (d *Dispatcher) runJob(ctx context.Context, inputPath string, job *Job, state *runState, total int, w io.Writer, log *zap.Logger) {
	// The slot may have been granted after cancellation; do not invoke.
	if ctx.Err() != nil {
		d.markNotStarted(job, ctx.Err(), state, total, w)
		return
	}

	job.Status = StatusRunning
	state.started()
	fmt.Fprintf(w, "started:   %s\n", jobLabel(job, total))
	log.Info("job started",
		zap.Int("index", job.Range.Index),
		zap.Int("start", job.Range.Start),
		zap.Int("end", job.Range.End),
	)

	jctx := ctx
	if d.JobTimeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, d.JobTimeout)
		defer cancel()
	}

	begin := time.Now()
	err := d.Invoker.Convert(jctx, worker.Request{
		InputPath: inputPath,
		PartPath:  job.PartPath,
		Range:     job.Range,
		Whole:     job.Whole,
	})
	job.Elapsed = time.Since(begin)

	if err != nil {
		if errors.Is(jctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", d.JobTimeout, err)
		}
		job.Status = StatusFailed
		job.Err = err
		state.finished(false)
		fmt.Fprintf(w, "failed:    %s (%v)\n", jobLabel(job, total), err)
		log.Warn("job failed",
			zap.Int("index", job.Range.Index),
			zap.Duration("elapsed", job.Elapsed),
			zap.Error(err),
		)
		return
	}

	job.Status = StatusSucceeded
	state.finished(true)
	fmt.Fprintf(w, "converted: %s in %s\n", jobLabel(job, total), job.Elapsed.Round(time.Millisecond))
	log.Info("job finished",
		zap.Int("index", job.Range.Index),
		zap.Duration("elapsed", job.Elapsed),
	)
}

func jobLabel(job *Job, total int) string {
	return fmt.Sprintf("job %d/%d (pages %d-%d)", job.Range.Index, total, job.Range.Start, job.Range.End)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert orchestrates a full document-to-markdown run: discover the
// page count, plan contiguous ranges, dispatch one worker per range, merge
// the parts into the artifact, and report the outcome.
// Implements: prd001-planning (R1-R3), prd002-dispatch (R1-R4),
// prd003-merge (R1-R3), prd004-reporting (R1-R2);
//
//	docs/ARCHITECTURE § Run Pipeline.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearclown/markpdfdown/internal/dispatch"
	"github.com/clearclown/markpdfdown/internal/merge"
	"github.com/clearclown/markpdfdown/internal/pagecount"
	"github.com/clearclown/markpdfdown/internal/pagerange"
	"github.com/clearclown/markpdfdown/internal/worker"
	"github.com/clearclown/markpdfdown/pkg/types"
)

// Deps are the injected collaborators for a run.
type Deps struct {
	Counter pagecount.Counter
	Invoker worker.Invoker
	Log     *zap.Logger
}

// Options configure a single conversion run.
type Options struct {
	InputPath  string
	OutputPath string

	// Pages overrides page discovery when > 0.
	Pages int

	PagesPerJob int
	MaxParallel int
	StartDelay  time.Duration
	JobTimeout  time.Duration

	// KeepParts leaves the run directory behind for inspection.
	KeepParts bool

	// Manifest writes run metadata in YAML next to the artifact.
	Manifest bool

	// WorkDir is the parent for the run-scoped parts directory. Empty
	// selects the system temp directory.
	WorkDir string
}

// Run executes one conversion run end to end and returns its report. Worker
// failures do not abort the run; they surface as failed counts, gaps in the
// artifact, and HasFailures on the report. The run-scoped parts directory is
// removed on every return path unless KeepParts is set.
func Run(ctx context.Context, deps Deps, opts Options, w io.Writer) (types.RunReport, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	report := types.RunReport{
		RunID:     uuid.NewString(),
		Input:     opts.InputPath,
		Output:    opts.OutputPath,
		StartedAt: time.Now().UTC(),
	}
	started := time.Now()

	if err := validateOptions(opts); err != nil {
		return report, err
	}

	totalPages := opts.Pages
	if totalPages == 0 {
		n, err := deps.Counter.Count(ctx, opts.InputPath)
		if err != nil {
			return report, err
		}
		totalPages = n
	}
	report.TotalPages = totalPages
	fmt.Fprintf(w, "Input: %s (%d pages)\n", opts.InputPath, totalPages)

	ranges, err := pagerange.Plan(totalPages, opts.PagesPerJob)
	if err != nil {
		return report, fmt.Errorf("planning ranges: %w", err)
	}
	report.TotalJobs = len(ranges)

	partsDir, err := os.MkdirTemp(opts.WorkDir, "markpdfdown-"+report.RunID[:8]+"-")
	if err != nil {
		return report, fmt.Errorf("creating run directory: %w", err)
	}
	defer func() {
		if opts.KeepParts {
			fmt.Fprintf(w, "Parts kept in %s\n", partsDir)
			return
		}
		if err := os.RemoveAll(partsDir); err != nil {
			log.Warn("run directory cleanup failed", zap.String("dir", partsDir), zap.Error(err))
		}
	}()

	log.Info("run planned",
		zap.String("run_id", report.RunID),
		zap.Int("total_pages", totalPages),
		zap.Int("total_jobs", len(ranges)),
		zap.String("parts_dir", partsDir),
	)

	whole := len(ranges) == 1
	jobs := make([]dispatch.Job, len(ranges))
	for i, r := range ranges {
		jobs[i] = dispatch.Job{
			Range:    r,
			PartPath: filepath.Join(partsDir, pagerange.PartName(r.Index, len(ranges))),
			Whole:    whole,
		}
	}

	fmt.Fprintf(w, "Dispatching %d jobs (up to %d in parallel)\n\n", len(jobs), opts.MaxParallel)

	d := &dispatch.Dispatcher{
		Invoker:     deps.Invoker,
		MaxParallel: opts.MaxParallel,
		StartDelay:  opts.StartDelay,
		JobTimeout:  opts.JobTimeout,
		Log:         log,
		Progress:    w,
	}
	res := d.Run(ctx, opts.InputPath, jobs)

	// Every planned job must land in a terminal state before the merge;
	// a miscount here means lost work, not a failed worker.
	if res.Completed() != len(jobs) {
		return report, fmt.Errorf("dispatch accounting error: %d of %d jobs reached a terminal state",
			res.Completed(), len(jobs))
	}
	report.Succeeded = res.Succeeded
	report.Failed = res.Failed

	stats, err := merge.Merge(partsDir, opts.OutputPath, len(jobs))
	if err != nil {
		return report, fmt.Errorf("merging parts: %w", err)
	}
	report.Gaps = stats.Gaps
	report.OutputBytes = stats.Bytes
	report.OutputLines = stats.Lines
	report.Duration = time.Since(started)

	fmt.Fprintf(w, "\nRun summary: %d succeeded, %d failed (total: %d jobs)\n",
		report.Succeeded, report.Failed, report.TotalJobs)
	if stats.Gaps > 0 {
		fmt.Fprintf(w, "warning: artifact has %d gap(s) where jobs failed\n", stats.Gaps)
	}
	fmt.Fprintf(w, "Output: %s (%s, %d lines)\n",
		opts.OutputPath, humanize.Bytes(uint64(stats.Bytes)), stats.Lines)

	if opts.Manifest {
		if err := writeManifest(manifestPath(opts.OutputPath), report); err != nil {
			fmt.Fprintf(w, "warning: manifest write failed: %v\n", err)
		}
	}

	log.Info("run finished",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("gaps", report.Gaps),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

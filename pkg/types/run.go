// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PageRange is a contiguous, inclusive span of pages handled by one job.
// Pages are 1-based; Index is the 1-based position in planning order.
type PageRange struct {
	Index int `json:"index" yaml:"index"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int {
	return r.End - r.Start + 1
}

// RunReport aggregates the outcome of one conversion run.
// Per prd004-reporting R1.1-R1.4.
type RunReport struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Input       string        `json:"input" yaml:"input"`
	Output      string        `json:"output" yaml:"output"`
	TotalPages  int           `json:"total_pages" yaml:"total_pages"`
	TotalJobs   int           `json:"total_jobs" yaml:"total_jobs"`
	Succeeded   int           `json:"succeeded" yaml:"succeeded"`
	Failed      int           `json:"failed" yaml:"failed"`
	Gaps        int           `json:"gaps" yaml:"gaps"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	OutputLines int           `json:"output_lines" yaml:"output_lines"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
}

// Completed returns the number of jobs that reached a terminal state.
func (r RunReport) Completed() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any job failed.
func (r RunReport) HasFailures() bool {
	return r.Failed > 0
}

package types

import "time"

// WorkerBackend identifies how conversion workers are launched.
// Per prd002-dispatch R5.1.
type WorkerBackend string

const (
	// WorkerContainer runs workers through a container runtime (docker or podman).
	WorkerContainer WorkerBackend = "container"

	// WorkerCommand runs workers as local child processes.
	WorkerCommand WorkerBackend = "command"
)

// WorkerConfig holds settings for the external conversion worker.
// The worker reads the document on stdin, takes optional page bounds as
// positional arguments, and writes converted text to stdout.
type WorkerConfig struct {
	// Backend selects how workers run: container or command.
	Backend WorkerBackend `json:"backend" yaml:"backend"`

	// Image is the container image invoked per page range.
	Image string `json:"image" yaml:"image"`

	// Command is the local worker executable, used by the command backend.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// EnvFile is an optional KEY=VALUE file passed through to each worker.
	// Its contents are opaque to the orchestrator.
	EnvFile string `json:"env_file,omitempty" yaml:"env_file,omitempty"`
}

// PageCountBackend identifies the page count discovery tool.
// Per prd001-planning R2.1.
type PageCountBackend string

const (
	// CountNative counts pages in-process.
	CountNative PageCountBackend = "native"

	// CountPdfinfo shells out to pdfinfo (poppler-utils).
	CountPdfinfo PageCountBackend = "pdfinfo"
)

// PagesConfig holds settings for page count discovery.
type PagesConfig struct {
	// Backend selects the discovery tool: native or pdfinfo.
	Backend PageCountBackend `json:"backend" yaml:"backend"`
}

// RunConfig holds settings for the dispatch loop.
// Per prd002-dispatch R1.2, R4.1-R4.3.
type RunConfig struct {
	// PagesPerJob is the maximum number of pages per worker invocation (default 50).
	PagesPerJob int `json:"pages_per_job" yaml:"pages_per_job"`

	// MaxParallel bounds the number of concurrently running workers (default 4).
	MaxParallel int `json:"max_parallel" yaml:"max_parallel"`

	// StartDelay is the pause between consecutive job starts (default 1s).
	// Smooths burst load against rate-limited providers behind the worker.
	StartDelay time.Duration `json:"start_delay" yaml:"start_delay"`

	// JobTimeout bounds a single worker invocation (default 15m, 0 disables).
	JobTimeout time.Duration `json:"job_timeout" yaml:"job_timeout"`

	// KeepParts skips removal of the run-scoped part directory, for debugging.
	KeepParts bool `json:"keep_parts" yaml:"keep_parts"`
}

// HistoryConfig holds settings for the local run ledger.
type HistoryConfig struct {
	// Path is the SQLite database location (default: user cache dir).
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Disabled turns off run recording.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// Config groups all stage configurations.
type Config struct {
	Worker  WorkerConfig  `json:"worker" yaml:"worker"`
	Pages   PagesConfig   `json:"pages" yaml:"pages"`
	Run     RunConfig     `json:"run" yaml:"run"`
	History HistoryConfig `json:"history" yaml:"history"`
}

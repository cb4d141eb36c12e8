// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker invokes the external conversion worker for one page range.
// The worker contract: document bytes on stdin, optional "start end" page
// bounds as positional arguments (none converts the whole document),
// converted text on stdout, diagnostics on stderr, exit 0 on success.
// Implements: prd002-dispatch R2 (worker invocation);
//
//	docs/ARCHITECTURE § Dispatch.
package worker

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/clearclown/markpdfdown/pkg/types"
)

// stderrTailBytes bounds how much trailing worker stderr is kept for
// failure diagnostics.
const stderrTailBytes = 2048

// Request describes one worker invocation for one page range.
type Request struct {
	// InputPath is the source document streamed to the worker's stdin.
	InputPath string

	// PartPath is where the worker's converted output is persisted.
	PartPath string

	// Range bounds the conversion when Whole is false.
	Range types.PageRange

	// Whole invokes the worker without bounds, converting the whole document.
	Whole bool
}

// Invoker runs one external conversion worker per request. A nil error means
// the worker exited cleanly and its output was persisted to PartPath.
type Invoker interface {
	Convert(ctx context.Context, req Request) error
}

// boundsArgs returns the worker's positional arguments: start and end page
// numbers, or none for a whole-document invocation.
func boundsArgs(req Request) []string {
	if req.Whole {
		return nil
	}
	return []string{strconv.Itoa(req.Range.Start), strconv.Itoa(req.Range.End)}
}

// writePart persists worker output to the request's part path after
// stripping any enclosing Markdown fence.
func writePart(req Request, raw []byte) error {
	content := StripFences(string(raw))
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("worker produced empty output for pages %d-%d", req.Range.Start, req.Range.End)
	}
	if err := os.WriteFile(req.PartPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing part %s: %w", req.PartPath, err)
	}
	return nil
}

// workerError attaches the worker's trailing stderr output to err.
func workerError(err error, stderr *tailBuffer) error {
	if tail := stderr.Tail(); tail != "" {
		return fmt.Errorf("%w (stderr: %s)", err, tail)
	}
	return err
}

// tailBuffer keeps the last cap bytes written to it.
type tailBuffer struct {
	cap int
	buf []byte
}

func newTailBuffer(capacity int) *tailBuffer {
	return &tailBuffer{cap: capacity}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.cap {
		t.buf = t.buf[len(t.buf)-t.cap:]
	}
	return len(p), nil
}

// Tail returns the buffered output with surrounding whitespace removed.
func (t *tailBuffer) Tail() string {
	return strings.TrimSpace(string(t.buf))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/clearclown/markpdfdown/internal/envfile"
)

// CommandInvoker runs the conversion worker as a local child process. Extra
// environment entries are appended to the child environment, the counterpart
// of --env-file on the container backend.
type CommandInvoker struct {
	command  string
	extraEnv []string

	run func(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer, env []string) error
}

// NewCommandInvoker creates an invoker that runs the worker executable at
// command, with env appended to the child environment in key order.
func NewCommandInvoker(command string, env map[string]string) (*CommandInvoker, error) {
	if command == "" {
		return nil, fmt.Errorf("worker command not configured")
	}

	extra := make([]string, 0, len(env))
	for _, k := range envfile.Keys(env) {
		extra = append(extra, k+"="+env[k])
	}

	return &CommandInvoker{command: command, extraEnv: extra, run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = env
	return cmd.Run()
}

// Convert runs one worker process and persists its stdout as the request's
// part file.
func (c *CommandInvoker) Convert(ctx context.Context, req Request) error {
	f, err := os.Open(req.InputPath)
	if err != nil {
		return fmt.Errorf("opening document %s: %w", req.InputPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	stderr := newTailBuffer(stderrTailBytes)
	env := append(os.Environ(), c.extraEnv...)

	if err := c.run(ctx, c.command, boundsArgs(req), f, &out, stderr, env); err != nil {
		return workerError(fmt.Errorf("running worker %s: %w", c.command, err), stderr)
	}

	return writePart(req, out.Bytes())
}

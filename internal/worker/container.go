// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/clearclown/markpdfdown/internal/container"
)

// ContainerInvoker runs the conversion worker as a container, piping the
// document through stdin. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type ContainerInvoker struct {
	runtime container.Runtime
	image   string
	envFile string
}

// NewContainerInvoker creates an invoker that runs the given worker image,
// passing envFile through to each container when set. It verifies that the
// image exists locally before returning.
func NewContainerInvoker(rt container.Runtime, image, envFile string) (*ContainerInvoker, error) {
	if image == "" {
		return nil, fmt.Errorf("worker image not configured")
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("worker image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerInvoker{runtime: rt, image: image, envFile: envFile}, nil
}

// Convert streams the document into one worker container and persists its
// stdout as the request's part file.
func (c *ContainerInvoker) Convert(ctx context.Context, req Request) error {
	f, err := os.Open(req.InputPath)
	if err != nil {
		return fmt.Errorf("opening document %s: %w", req.InputPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	stderr := newTailBuffer(stderrTailBytes)

	spec := container.RunSpec{
		Image:   c.image,
		Args:    boundsArgs(req),
		EnvFile: c.envFile,
		Stdin:   f,
		Stdout:  &out,
		Stderr:  stderr,
	}
	if err := c.runtime.Run(ctx, spec); err != nil {
		return workerError(err, stderr)
	}

	return writePart(req, out.Bytes())
}

package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrValidation marks option errors detected before any work starts.
var ErrValidation = errors.New("invalid run options")

// validateOptions checks every option and reports all problems at once, so
// the user fixes one invocation instead of replaying failures one by one.
func validateOptions(opts Options) error {
	var problems []string

	switch info, err := os.Stat(opts.InputPath); {
	case opts.InputPath == "":
		problems = append(problems, "input path is required")
	case err != nil:
		problems = append(problems, fmt.Sprintf("input %s is not readable: %v", opts.InputPath, err))
	case info.IsDir():
		problems = append(problems, fmt.Sprintf("input %s is a directory", opts.InputPath))
	}

	if opts.OutputPath == "" {
		problems = append(problems, "output path is required")
	} else if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			problems = append(problems, fmt.Sprintf("output directory %s does not exist", dir))
		}
	}

	if opts.Pages < 0 {
		problems = append(problems, fmt.Sprintf("pages override must be positive (got %d)", opts.Pages))
	}
	if opts.PagesPerJob < 1 {
		problems = append(problems, fmt.Sprintf("pages per job must be at least 1 (got %d)", opts.PagesPerJob))
	}
	if opts.MaxParallel < 1 {
		problems = append(problems, fmt.Sprintf("max parallel must be at least 1 (got %d)", opts.MaxParallel))
	}
	if opts.StartDelay < 0 {
		problems = append(problems, fmt.Sprintf("start delay must not be negative (got %s)", opts.StartDelay))
	}
	if opts.JobTimeout < 0 {
		problems = append(problems, fmt.Sprintf("job timeout must not be negative (got %s)", opts.JobTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

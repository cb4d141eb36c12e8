// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge assembles per-range part files into the final markdown
// artifact. Part names carry zero-padded range ordinals, so lexical order
// is range order and the artifact layout is independent of job completion
// order.
// Implements: prd003-merge (R1-R3);
//
//	docs/ARCHITECTURE § Merge.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats describes an assembled artifact.
type Stats struct {
	// Parts is the number of part files merged in.
	Parts int

	// Gaps is the number of expected parts that were missing or empty.
	// A gap leaves a hole in the artifact where a job failed.
	Gaps int

	Bytes int64
	Lines int
}

// Merge reads the part files under partsDir, concatenates them in range
// order with a blank line between parts, and writes the artifact to
// outputPath via a temp file in the destination directory. Missing or empty
// parts of the totalJobs expected are counted as gaps, not errors.
func Merge(partsDir, outputPath string, totalJobs int) (Stats, error) {
	entries, err := os.ReadDir(partsDir)
	if err != nil {
		return Stats{}, fmt.Errorf("reading parts dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "part-") || !strings.HasSuffix(name, ".md") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(partsDir, name))
		if err != nil {
			return Stats{}, fmt.Errorf("reading part %s: %w", name, err)
		}
		text := strings.TrimRight(string(raw), "\n")
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}

	content := strings.Join(parts, "\n\n")
	if content != "" {
		content += "\n"
	}

	if err := writeArtifact(outputPath, content); err != nil {
		return Stats{}, err
	}

	return Stats{
		Parts: len(parts),
		Gaps:  totalJobs - len(parts),
		Bytes: int64(len(content)),
		Lines: strings.Count(content, "\n"),
	}, nil
}

// writeArtifact stages the artifact in a temp file next to the destination
// and renames it into place, so a crash mid-write never leaves a truncated
// artifact at outputPath.
func writeArtifact(outputPath, content string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(outputPath), ".merge-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.WriteString(content)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing artifact: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting artifact mode: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/clearclown/markpdfdown/pkg/types"
)

// manifestPath derives the manifest location from the artifact path:
// paper.md gets paper.manifest.yaml next to it.
func manifestPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".manifest.yaml"
}

// writeManifest records the run report in YAML next to the artifact.
func writeManifest(path string, report types.RunReport) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

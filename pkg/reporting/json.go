package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteSummaryJSON writes the summary as indented JSON
func WriteSummaryJSON(summary Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

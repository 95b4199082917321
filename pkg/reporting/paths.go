package reporting

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultReportFile is the report name used when no output path is configured
const DefaultReportFile = "indicators.xlsx"

// DefaultPathManager lays reports out as <root>/<SYMBOL>_<interval>/<file>
type DefaultPathManager struct {
	root string
}

// NewDefaultPathManager creates a path manager rooted at "results"
func NewDefaultPathManager() *DefaultPathManager {
	return NewPathManager("results")
}

// NewPathManager creates a path manager rooted at root
func NewPathManager(root string) *DefaultPathManager {
	return &DefaultPathManager{root: root}
}

func normalizePart(s, fallback string, upper bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if upper {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}

// GetDefaultOutputDir returns the run directory for symbol and interval
func (p *DefaultPathManager) GetDefaultOutputDir(symbol, interval string) string {
	return filepath.Join(p.root, normalizePart(symbol, "UNKNOWN", true)+"_"+normalizePart(interval, "unknown", false))
}

// GetDefaultOutputPath returns the default report file for a run
func (p *DefaultPathManager) GetDefaultOutputPath(symbol, interval string) string {
	return filepath.Join(p.GetDefaultOutputDir(symbol, interval), DefaultReportFile)
}

// EnsureDirectoryExists creates the parent directory of a file path
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

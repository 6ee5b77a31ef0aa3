package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used by a run
type Paths struct {
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// NewPaths resolves the configured directories to absolute paths
func NewPaths(cfg PathsConfig) (*Paths, error) {
	resolve := func(p string) (string, error) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		return abs, nil
	}

	dataDir, err := resolve(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	reportsDir, err := resolve(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	logsDir, err := resolve(cfg.LogsDir)
	if err != nil {
		return nil, err
	}

	return &Paths{
		DataDir:    dataDir,
		ReportsDir: reportsDir,
		LogsDir:    logsDir,
	}, nil
}

// EnsureDirectories creates the report and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "datapulse/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations. Relative directories resolve
// against basePath.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindArchives finds all .zip files in dir, sorted by name
func (d *Discovery) FindArchives(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".zip")
}

// FindTables finds all CSV and Excel tables in dir, sorted by name
func (d *Discovery) FindTables(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".csv", ".txt", ".xlsx", ".xlsm")
}

// ExpandTables is ExpandArchives for price tables, except that a missing
// file argument is passed through so the run itself can report it
func (d *Discovery) ExpandTables(args ...string) ([]string, error) {
	return d.expand(args, d.FindTables, "*.csv", true)
}

// ExpandArchives turns command arguments into an ordered list of archive
// paths. A file argument is used as is; a directory contributes its .zip
// files sorted by name. Arguments keep their order. A missing argument is a
// MissingInput error.
func (d *Discovery) ExpandArchives(args ...string) ([]string, error) {
	return d.expand(args, d.FindArchives, "*.zip", false)
}

func (d *Discovery) expand(args []string, find func(string) ([]FileInfo, error), want string, keepMissing bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		path := d.Resolve(arg)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if keepMissing {
					out = append(out, path)
					continue
				}
				return nil, apperrors.NewMissingInputError(path, err)
			}
			return nil, apperrors.NewValidationError(fmt.Sprintf("cannot stat %s", path), err)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		found, err := find(path)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, apperrors.NewMissingInputError(filepath.Join(path, want), nil)
		}
		for _, f := range found {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

func (d *Discovery) findByExtension(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.Resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewMissingInputError(fullPath, err)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sortByName(files)
	return files, nil
}

// Resolve joins a relative p to the base path; absolute paths and an empty base
// leave p unchanged
func (d *Discovery) Resolve(p string) string {
	if filepath.IsAbs(p) || d.basePath == "" {
		return p
	}
	return filepath.Join(d.basePath, p)
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func sortByName(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
}

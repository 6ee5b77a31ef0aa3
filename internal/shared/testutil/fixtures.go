package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datapulse/pkg/contracts/domain"
)

// Member is one file to place in a test archive
type Member struct {
	Name  string
	Lines []string
}

// WriteZip writes an archive holding members, in order, and returns its path.
// Each line is terminated by a newline.
func WriteZip(t *testing.T, dir, name string, members ...Member) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			t.Fatalf("create member %s: %v", m.Name, err)
		}
		for _, line := range m.Lines {
			if _, err := w.Write([]byte(line + "\n")); err != nil {
				t.Fatalf("write member %s: %v", m.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return path
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// CSV joins lines into delimited text with a trailing newline
func CSV(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// PriceRow builds a price row. Empty strings become Missing cells, strings
// that look like dates stay text so coercion can be exercised.
func PriceRow(date string, open, high, low, close, volume any) domain.Row {
	return domain.Row{
		"Date":   cell(date),
		"Open":   cell(open),
		"High":   cell(high),
		"Low":    cell(low),
		"Close":  cell(close),
		"Volume": cell(volume),
	}
}

// PriceColumns is the column order used by PriceRow tables
var PriceColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// PriceTable builds a table from PriceRow rows
func PriceTable(rows ...domain.Row) domain.Table {
	return domain.NewTableFromRows(PriceColumns, rows)
}

func cell(v any) domain.Value {
	switch x := v.(type) {
	case nil:
		return domain.Missing()
	case string:
		if x == "" {
			return domain.Missing()
		}
		return domain.Text(x)
	case int:
		return domain.Number(float64(x))
	case float64:
		return domain.Number(x)
	case domain.Value:
		return x
	default:
		return domain.Missing()
	}
}

package main

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datapulse/internal/exporter"
	"datapulse/internal/validation"
	"datapulse/pkg/contracts/domain"
)

// exportFlags name the optional files a run writes. Relative names resolve
// against the reports directory.
type exportFlags struct {
	summaryCSV  string
	summaryXLSX string
	cleanedCSV  string
	missingCSV  string
}

func (f *exportFlags) register(cmd *cobra.Command, withMissing bool) {
	cmd.Flags().StringVar(&f.summaryCSV, "summary-out", "", "write the group summary as CSV")
	cmd.Flags().StringVar(&f.summaryXLSX, "summary-xlsx", "", "write the group summary as an Excel workbook")
	cmd.Flags().StringVar(&f.cleanedCSV, "cleaned-out", "", "write the cleaned table as CSV")
	if withMissing {
		cmd.Flags().StringVar(&f.missingCSV, "missing-out", "", "write the missing-value report as CSV")
	}
}

// exportRun writes every requested file for one run. When a command handles
// several inputs, tag is appended to each file stem so runs do not overwrite
// each other.
func (a *app) exportRun(f exportFlags, tag string, summary domain.Summary, missing []domain.ColumnMissing, table domain.Table) ([]string, error) {
	validator := validation.NewFileValidator(a.logger)
	for _, p := range []string{f.summaryCSV, f.summaryXLSX, f.missingCSV, f.cleanedCSV} {
		if p == "" {
			continue
		}
		if err := validator.ValidateOutputDirectory(filepath.Dir(a.paths.GetReportPath(p))); err != nil {
			return nil, err
		}
	}

	e := exporter.NewSummaryExporter(a.paths, a.logger)
	var written []string

	keep := func(path string, err error) error {
		if err != nil {
			return err
		}
		written = append(written, path)
		a.logger.Info("report written", slog.String("path", path))
		return nil
	}

	if f.summaryCSV != "" {
		if err := keep(e.ExportSummaryCSV(summary, tagged(f.summaryCSV, tag))); err != nil {
			return written, err
		}
	}
	if f.summaryXLSX != "" {
		if err := keep(e.ExportSummaryXLSX(summary, missing, tagged(f.summaryXLSX, tag))); err != nil {
			return written, err
		}
	}
	if f.missingCSV != "" {
		if err := keep(e.ExportMissingCSV(missing, tagged(f.missingCSV, tag))); err != nil {
			return written, err
		}
	}
	if f.cleanedCSV != "" {
		if err := keep(e.ExportTableCSV(table, tagged(f.cleanedCSV, tag))); err != nil {
			return written, err
		}
	}
	return written, nil
}

// tagged turns ("out/summary.csv", "AAPL") into "out/summary_AAPL.csv"
func tagged(path, tag string) string {
	if tag == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + tag + ext
}

// inputTag is the file stem used to tell the exports of several inputs apart
func inputTag(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package exporter

import (
	"fmt"
	"log/slog"

	"datapulse/internal/config"
	"datapulse/pkg/contracts/domain"
)

// SummaryExporter writes run outputs: group summaries, missing-value reports
// and cleaned tables
type SummaryExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewSummaryExporter creates a summary exporter
func NewSummaryExporter(paths *config.Paths, logger *slog.Logger) *SummaryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// SummaryHeaders returns the column headers of a summary export
func SummaryHeaders(s domain.Summary) []string {
	group := s.GroupColumn
	if group == "" {
		group = "group"
	}
	return []string{group, "rows", "count", "mean", "std_dev"}
}

// SummaryRows renders the groups in their summary order
func SummaryRows(s domain.Summary) [][]string {
	rows := make([][]string, 0, len(s.Groups))
	for _, g := range s.Groups {
		rows = append(rows, []string{
			g.Key,
			formatInt(g.Rows),
			formatInt(g.Count),
			formatMean(g),
			formatFloat(g.StdDev),
		})
	}
	return rows
}

// ExportSummaryCSV writes the summary to outputPath and returns the full path
func (e *SummaryExporter) ExportSummaryCSV(s domain.Summary, outputPath string) (string, error) {
	path, err := e.csvWriter.WriteSimpleCSV(outputPath, SummaryHeaders(s), SummaryRows(s))
	if err != nil {
		return "", fmt.Errorf("failed to export summary: %w", err)
	}
	return path, nil
}

// ExportMissingCSV writes a missing-value report
func (e *SummaryExporter) ExportMissingCSV(report []domain.ColumnMissing, outputPath string) (string, error) {
	rows := make([][]string, 0, len(report))
	for _, m := range report {
		rows = append(rows, []string{m.Column, formatInt(m.MissingValues), formatFloat(m.MissingPercentage)})
	}
	path, err := e.csvWriter.WriteSimpleCSV(outputPath, []string{"column", "missing_values", "missing_percentage"}, rows)
	if err != nil {
		return "", fmt.Errorf("failed to export missing report: %w", err)
	}
	return path, nil
}

// ExportTableCSV streams every row of t to outputPath. Missing cells are
// written empty and dates as YYYY-MM-DD.
func (e *SummaryExporter) ExportTableCSV(t domain.Table, outputPath string) (string, error) {
	columns := t.Columns()
	sw, err := e.csvWriter.CreateStreamWriter(outputPath, columns)
	if err != nil {
		return "", fmt.Errorf("failed to export table: %w", err)
	}

	record := make([]string, len(columns))
	for i := 0; i < t.Len(); i++ {
		for j, c := range columns {
			record[j] = t.Value(i, c).String()
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return "", fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Close(); err != nil {
		return "", fmt.Errorf("failed to export table: %w", err)
	}
	e.logger.Info("Exported table",
		slog.String("path", sw.Path()),
		slog.Int("rows", t.Len()))
	return sw.Path(), nil
}

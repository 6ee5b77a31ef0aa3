package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "datapulse/internal/errors"
	"datapulse/pkg/contracts/domain"
)

const (
	summarySheet = "Summary"
	missingSheet = "Missing"
)

// ExportSummaryXLSX writes a workbook with the summary on one sheet and, when
// given, the missing-value report on a second. Numbers are stored as numbers.
func (e *SummaryExporter) ExportSummaryXLSX(s domain.Summary, missing []domain.ColumnMissing, outputPath string) (string, error) {
	fullPath := e.csvWriter.resolvePath(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return "", apperrors.NewStorageError("failed to name summary sheet", err)
	}

	if err := writeSheetRow(f, summarySheet, 1, toAny(SummaryHeaders(s))); err != nil {
		return "", err
	}
	for i, g := range s.Groups {
		row := []any{g.Key, g.Rows, g.Count, nil, g.StdDev}
		if g.HasMean {
			row[3] = g.Mean
		}
		if err := writeSheetRow(f, summarySheet, i+2, row); err != nil {
			return "", err
		}
	}
	if s.MostVariable != nil {
		note := []any{"most variable", s.MostVariable.Key}
		if err := writeSheetRow(f, summarySheet, len(s.Groups)+3, note); err != nil {
			return "", err
		}
	}

	if len(missing) > 0 {
		if _, err := f.NewSheet(missingSheet); err != nil {
			return "", apperrors.NewStorageError("failed to add missing sheet", err)
		}
		if err := writeSheetRow(f, missingSheet, 1, []any{"column", "missing_values", "missing_percentage"}); err != nil {
			return "", err
		}
		for i, m := range missing {
			if err := writeSheetRow(f, missingSheet, i+2, []any{m.Column, m.MissingValues, m.MissingPercentage}); err != nil {
				return "", err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create directory", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", apperrors.NewStorageError("failed to save workbook", err).WithContext("path", fullPath)
	}

	e.logger.Info("Exported summary workbook",
		slog.String("path", fullPath),
		slog.Int("groups", len(s.Groups)))
	return fullPath, nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return apperrors.NewStorageError("invalid cell", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s row %d", sheet, row), err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

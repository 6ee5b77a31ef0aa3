// Package exporter writes datapulse run outputs to disk.
//
// CSVWriter is the low-level writer: headers, append mode, streaming and a
// UTF-8 BOM so spreadsheet tools detect the encoding. Relative paths resolve
// against the configured reports directory.
//
// SummaryExporter builds on it to export group summaries, missing-value
// reports and cleaned tables as CSV, and summaries as an XLSX workbook.
//
//	exp := exporter.NewSummaryExporter(paths, logger)
//	path, err := exp.ExportSummaryCSV(result.Summary, "AAPL_summary.csv")
package exporter

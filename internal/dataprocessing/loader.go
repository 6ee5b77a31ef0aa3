package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"datapulse/internal/config"
	apperrors "datapulse/internal/errors"
	"datapulse/internal/infrastructure"
	"datapulse/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// TableLoader reads delimited text and Excel workbooks into Tables
type TableLoader struct {
	logger       *slog.Logger
	sheet        string
	strictQuotes bool
	missing      map[string]struct{}
}

// LoadResult is a loaded table together with the number of delimited rows the
// reader could not parse and left out
type LoadResult struct {
	Table       domain.Table
	SkippedRows int
}

// LoaderOption configures a TableLoader
type LoaderOption func(*TableLoader)

// WithSheet selects the worksheet read from workbooks
func WithSheet(name string) LoaderOption {
	return func(l *TableLoader) { l.sheet = name }
}

// WithStrictQuotes makes a bare quote inside an unquoted field a parse error,
// so the row carrying it is skipped. By default the quote is kept as text.
func WithStrictQuotes(strict bool) LoaderOption {
	return func(l *TableLoader) { l.strictQuotes = strict }
}

// WithMissingTokens replaces the set of cell texts read as missing
func WithMissingTokens(tokens []string) LoaderOption {
	return func(l *TableLoader) {
		l.missing = make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			l.missing[tok] = struct{}{}
		}
	}
}

// NewTableLoader creates a loader using the default missing tokens
func NewTableLoader(logger *slog.Logger, opts ...LoaderOption) *TableLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &TableLoader{logger: infrastructure.WithComponent(logger, "table_loader")}
	WithMissingTokens(config.MissingTokens)(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the table at path. A missing file yields an empty result together
// with a MissingInput error so the caller can report it and carry on.
func (l *TableLoader) Load(ctx context.Context, path string) (LoadResult, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{}, apperrors.NewMissingInputError(path, err)
		}
		return LoadResult{}, apperrors.NewValidationError(fmt.Sprintf("cannot stat %s", path), err)
	}

	var (
		res LoadResult
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		res, err = l.loadWorkbook(ctx, path)
	default:
		res, err = l.loadDelimited(path)
	}
	if err != nil {
		return LoadResult{}, err
	}

	if res.SkippedRows > 0 {
		l.logger.WarnContext(ctx, "skipped unparseable rows",
			slog.String("path", path),
			slog.Int("rows", res.SkippedRows))
	}
	l.logger.InfoContext(ctx, "loaded table",
		slog.String("path", path),
		slog.Int("rows", res.Table.Len()),
		slog.Int("columns", len(res.Table.Columns())))
	return res, nil
}

// LoadReader reads delimited text from r. Rows the CSV reader rejects are
// left out and counted in SkippedRows.
func (l *TableLoader) LoadReader(r io.Reader) (LoadResult, error) {
	header, rows, skipped, err := readCSV(r, !l.strictQuotes)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Table: l.build(header, rows), SkippedRows: skipped}, nil
}

func (l *TableLoader) loadDelimited(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, apperrors.NewValidationError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	res, err := l.LoadReader(f)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return LoadResult{}, err
	}
	return res, nil
}

// readCSV reads r row by row. The first row that parses is the header. Rows
// failing with a *csv.ParseError are skipped; any other read error ends the
// table.
func readCSV(r io.Reader, lazyQuotes bool) ([]string, [][]string, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = lazyQuotes

	var (
		header  []string
		rows    [][]string
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, nil, 0, apperrors.NewValidationError("malformed delimited input", err)
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, skipped, nil
}

func (l *TableLoader) loadWorkbook(ctx context.Context, path string) (LoadResult, error) {
	header, rows, err := l.readWorkbook(ctx, path)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Table: l.build(header, rows)}, nil
}

func (l *TableLoader) readWorkbook(ctx context.Context, path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("cannot open workbook %s", path), err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("cannot read sheet %q", sheet), err).
			WithContext("path", path)
	}
	l.logger.DebugContext(ctx, "read worksheet",
		slog.String("sheet", sheet),
		slog.Int("total_rows", len(rows)))

	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

// build turns raw text into a Table. Missing tokens become Missing cells and a
// column whose present cells all parse as numbers is stored as numbers.
func (l *TableLoader) build(header []string, rows [][]string) domain.Table {
	if len(header) == 0 {
		return domain.Table{}
	}
	columns := uniqueHeader(header)

	cells := make([][]domain.Value, 0, len(rows))
	for _, raw := range rows {
		if isBlankRow(raw) {
			continue
		}
		row := make([]domain.Value, len(columns))
		for j := range columns {
			if j >= len(raw) {
				continue
			}
			text := strings.TrimSpace(raw[j])
			if _, na := l.missing[text]; na {
				continue
			}
			row[j] = domain.Text(text)
		}
		cells = append(cells, row)
	}

	for j := range columns {
		if !numericColumn(cells, j) {
			continue
		}
		for _, row := range cells {
			if s, ok := row[j].Text(); ok {
				f, _ := strconv.ParseFloat(s, 64)
				row[j] = domain.Number(f)
			}
		}
	}

	return domain.NewTable(columns, cells)
}

func numericColumn(cells [][]domain.Value, j int) bool {
	present := false
	for _, row := range cells {
		s, ok := row[j].Text()
		if !ok {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		present = true
	}
	return present
}

// uniqueHeader trims header names, strips a leading byte order mark and
// renames repeats as "name.1", "name.2" and so on.
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for {
			n, dup := seen[name]
			if !dup {
				break
			}
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", h, n+1)
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func isBlankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

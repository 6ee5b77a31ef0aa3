package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"datapulse/internal/config"
	"datapulse/internal/dataprocessing"
	apperrors "datapulse/internal/errors"
	"datapulse/internal/infrastructure"
	"datapulse/pkg/contracts/domain"
)

// TableLoader loads a tabular input file
type TableLoader interface {
	Load(ctx context.Context, path string) (dataprocessing.LoadResult, error)
}

// ArchiveWalker decodes the records of one archive
type ArchiveWalker interface {
	Walk(ctx context.Context, path string) (*dataprocessing.WalkResult, error)
}

// PriceResult is the outcome of one price run
type PriceResult struct {
	Source  string `json:"source"`
	TraceID string `json:"trace_id"`
	Symbol  string `json:"symbol,omitempty"`

	// Missing is the missing-value report of the table as loaded
	Missing []domain.ColumnMissing `json:"missing"`

	// Table is the cleaned table handed to the aggregator
	Table   domain.Table         `json:"-"`
	Reports []domain.StageReport `json:"reports"`
	Summary domain.Summary       `json:"summary"`

	Diagnostics []string `json:"diagnostics"`
}

// LogResult is the outcome of one log run across one or more archives
type LogResult struct {
	TraceID string                     `json:"trace_id"`
	Walk    *dataprocessing.WalkResult `json:"walk"`
	Table   domain.Table               `json:"-"`
	Reports []domain.StageReport       `json:"reports"`
	Summary domain.Summary             `json:"summary"`

	Diagnostics []string `json:"diagnostics"`
}

// SummaryService runs the load, clean and summarize flow for price tables and
// log archives
type SummaryService struct {
	cfg         *config.Config
	loader      TableLoader
	walker      ArchiveWalker
	priceStages []dataprocessing.Stage
	logStages   []dataprocessing.Stage
	metrics     *infrastructure.PipelineMetrics
	base        *slog.Logger
	logger      *slog.Logger
}

// Option customizes a SummaryService
type Option func(*SummaryService)

// WithTableLoader replaces the table loader
func WithTableLoader(l TableLoader) Option {
	return func(s *SummaryService) { s.loader = l }
}

// WithArchiveWalker replaces the archive walker
func WithArchiveWalker(w ArchiveWalker) Option {
	return func(s *SummaryService) { s.walker = w }
}

// WithMetrics records pipeline metrics on m
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(s *SummaryService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSummaryService builds the service and its cleaning chains from cfg
func NewSummaryService(cfg *config.Config, logger *slog.Logger, opts ...Option) (*SummaryService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	priceStages, err := dataprocessing.PriceStages(cfg.Prices)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid price cleaning configuration", err)
	}

	s := &SummaryService{
		cfg:         cfg,
		priceStages: priceStages,
		logStages:   dataprocessing.LogStages(cfg.Logs),
		metrics:     infrastructure.NoopPipelineMetrics(),
		base:        logger,
		logger:      infrastructure.WithComponent(logger, "summary_service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.loader == nil {
		s.loader = dataprocessing.NewTableLoader(logger,
			dataprocessing.WithSheet(cfg.Prices.Sheet),
			dataprocessing.WithStrictQuotes(cfg.Prices.StrictQuotes))
	}
	if s.walker == nil {
		s.walker = dataprocessing.NewArchiveWalker(logger,
			dataprocessing.WithMemberPrefix(cfg.Logs.MemberPrefix),
			dataprocessing.WithMaxLineBytes(cfg.Logs.MaxLineBytes),
			dataprocessing.WithWalkerMetrics(s.metrics))
	}

	return s, nil
}

// RunPrices loads the price table at path, cleans it and summarizes the value
// column per symbol. A missing file is reported in the diagnostics and yields
// an empty result without an error; other load failures are returned.
func (s *SummaryService) RunPrices(ctx context.Context, path string) (*PriceResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	result := &PriceResult{
		Source:  path,
		TraceID: infrastructure.GetTraceID(ctx),
		Missing: []domain.ColumnMissing{},
		Summary: domain.Summary{
			GroupColumn: s.cfg.Prices.SymbolColumn,
			ValueColumn: s.cfg.Prices.ValueColumn,
			Groups:      []domain.GroupSummary{},
		},
	}

	s.logger.InfoContext(ctx, "price run started", slog.String("path", path))

	loaded, err := s.loader.Load(ctx, path)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeMissingInput) {
			s.logger.ErrorContext(ctx, "price input missing", slog.String("path", path))
			result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("Input file %s is missing", path))
			return result, nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	table := loaded.Table
	if loaded.SkippedRows > 0 {
		result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("Skipped %d unparseable rows", loaded.SkippedRows))
	}
	result.Missing = dataprocessing.MissingValues(table)
	if table.IsEmpty() {
		s.logger.WarnContext(ctx, "table is empty", slog.String("path", path))
		result.Diagnostics = append(result.Diagnostics, "Table is empty")
	}

	if !table.HasColumn(s.cfg.Prices.SymbolColumn) {
		result.Symbol = s.defaultSymbol(path)
		table = table.WithColumn(s.cfg.Prices.SymbolColumn, domain.Text(result.Symbol))
	}

	pipeline := dataprocessing.NewPipeline(s.base, s.metrics, s.priceStages...)
	result.Table, result.Reports = pipeline.Run(ctx, table)
	result.Diagnostics = append(result.Diagnostics, stageDiagnostics(result.Reports)...)

	agg := dataprocessing.NewAggregator(s.base, s.cfg.Prices.SortBy)
	result.Summary = agg.Summarize(ctx, result.Table, s.cfg.Prices.SymbolColumn, s.cfg.Prices.ValueColumn)
	result.Diagnostics = append(result.Diagnostics, notable("most volatile symbol is", result.Summary))

	s.logger.InfoContext(ctx, "price run complete",
		slog.String("path", path),
		slog.Int("rows_loaded", table.Len()),
		slog.Int("rows_clean", result.Table.Len()),
		slog.Int("groups", len(result.Summary.Groups)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// RunLogs walks every archive in order, merges their records, cleans them and
// summarizes the latency per API method. A missing or unreadable archive ends
// the run with an error.
func (s *SummaryService) RunLogs(ctx context.Context, archives ...string) (*LogResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	if len(archives) == 0 {
		return nil, apperrors.NewValidationError("log run needs at least one archive", ErrNoArchives)
	}

	walk := &dataprocessing.WalkResult{}
	for _, archive := range archives {
		part, err := s.walker.Walk(ctx, archive)
		if err != nil {
			s.logger.ErrorContext(ctx, "archive walk failed",
				slog.String("archive", archive),
				slog.String("error", err.Error()))
			return nil, err
		}
		walk.Merge(part)
	}

	result := &LogResult{
		TraceID:     infrastructure.GetTraceID(ctx),
		Walk:        walk,
		Diagnostics: walk.Diagnostics(),
	}

	table := dataprocessing.RecordsToTable(walk.Records)
	if table.IsEmpty() {
		s.logger.WarnContext(ctx, "no records decoded", slog.Int("archives", len(archives)))
	}

	pipeline := dataprocessing.NewPipeline(s.base, s.metrics, s.logStages...)
	result.Table, result.Reports = pipeline.Run(ctx, table)
	result.Diagnostics = append(result.Diagnostics, stageDiagnostics(result.Reports)...)

	agg := dataprocessing.NewAggregator(s.base, s.cfg.Logs.SortBy)
	result.Summary = agg.Summarize(ctx, result.Table, s.cfg.Logs.GroupColumn, s.cfg.Logs.ValueColumn)
	result.Diagnostics = append(result.Diagnostics, notable("most variable "+s.cfg.Logs.GroupColumn+" is", result.Summary))

	s.logger.InfoContext(ctx, "log run complete",
		slog.Int("archives", len(archives)),
		slog.Int("records", len(walk.Records)),
		slog.Int("malformed", walk.Malformed),
		slog.Int("groups", len(result.Summary.Groups)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// defaultSymbol is the configured default, or the upper-cased file stem
func (s *SummaryService) defaultSymbol(path string) string {
	if s.cfg.Prices.DefaultSymbol != "" {
		return s.cfg.Prices.DefaultSymbol
	}
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

func stageDiagnostics(reports []domain.StageReport) []string {
	var out []string
	for _, r := range reports {
		out = append(out, r.Messages()...)
	}
	return out
}

func notable(prefix string, summary domain.Summary) string {
	if summary.MostVariable == nil {
		return prefix + " none"
	}
	return fmt.Sprintf("%s %s", prefix, summary.MostVariable.Key)
}

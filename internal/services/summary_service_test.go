package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"datapulse/internal/config"
	"datapulse/internal/dataprocessing"
	apperrors "datapulse/internal/errors"
	"datapulse/internal/infrastructure"
	"datapulse/internal/shared/testutil"
	"datapulse/pkg/contracts/domain"
)

func newService(t *testing.T, cfg *config.Config, opts ...Option) (*SummaryService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	svc, err := NewSummaryService(cfg, logger, opts...)
	require.NoError(t, err)
	return svc, handler
}

func TestRunPrices_EndToEnd(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "aapl.csv", testutil.CSV(
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-01,10,12,9,11,11,1000",
		"2024-01-01,10,12,9,11,11,1000",
		"2024-01-02,11,10,12,11,11,",
		"2024-01-03,11,14,10,13,13,",
		"2024-01-04,12,15,11,,14,900",
	))
	svc, handler := newService(t, nil)

	result, err := svc.RunPrices(context.Background(), path)
	require.NoError(t, err)

	assert.NotEmpty(t, result.TraceID)
	assert.Equal(t, "AAPL", result.Symbol)
	require.Len(t, result.Missing, 7)
	assert.Equal(t, 2, result.Missing[6].MissingValues)

	assert.Equal(t, 2, result.Table.Len())
	require.Len(t, result.Summary.Groups, 1)
	group := result.Summary.Groups[0]
	assert.Equal(t, "AAPL", group.Key)
	assert.InDelta(t, 12.0, group.Mean, 1e-9)
	assert.InDelta(t, 1.4142135623730951, group.StdDev, 1e-9)

	assert.Contains(t, result.Diagnostics, "Filled 2 missing values in Volume")
	assert.Contains(t, result.Diagnostics, "Dropped 1 rows missing required fields")
	assert.Contains(t, result.Diagnostics, "Removed 1 duplicates")
	assert.Contains(t, result.Diagnostics, "high_low violations 1")
	assert.Equal(t, "most volatile symbol is AAPL", result.Diagnostics[len(result.Diagnostics)-1])

	testutil.AssertLogAttr(t, handler, "component", "summary_service")
	testutil.AssertNoErrors(t, handler)
}

func TestRunPrices_MissingFile(t *testing.T) {
	svc, handler := newService(t, nil)
	path := filepath.Join(t.TempDir(), "absent.csv")

	result, err := svc.RunPrices(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, result.Table.IsEmpty())
	assert.True(t, result.Summary.IsEmpty())
	assert.Nil(t, result.Summary.MostVariable)
	assert.Equal(t, []string{"Input file " + path + " is missing"}, result.Diagnostics)
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1, "reported once")
	assert.Empty(t, handler.GetRecordsByLevel(slog.LevelWarn))
	assert.False(t, handler.ContainsMessage("not found"))
}

func TestRunPrices_SkippedRowsDiagnostic(t *testing.T) {
	table := domain.NewTableFromRows(
		[]string{"Date", "Open", "High", "Low", "Close"},
		[]domain.Row{priceRow("2024-01-01", 10, "")},
	)
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, "notes.csv").
		Return(dataprocessing.LoadResult{Table: table, SkippedRows: 2}, nil)
	svc, _ := newService(t, nil, WithTableLoader(loader))

	result, err := svc.RunPrices(context.Background(), "notes.csv")
	require.NoError(t, err)

	assert.Equal(t, "Skipped 2 unparseable rows", result.Diagnostics[0])
	require.Len(t, result.Summary.Groups, 1)
	loader.AssertExpectations(t)
}

func TestRunPrices_StrictQuotesFromConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "aapl.csv", testutil.CSV(
		"Date,Open,High,Low,Close,note",
		"2024-01-01,10,12,9,11,ok",
		`2024-01-02,11,13,10,12,5" screen`,
		"2024-01-03,12,14,11,13,ok",
	))

	cfg := config.Default()
	svc, _ := newService(t, cfg)
	lenient, err := svc.RunPrices(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, lenient.Table.Len())
	assert.NotContains(t, lenient.Diagnostics, "Skipped 1 unparseable rows")

	cfg = config.Default()
	cfg.Prices.StrictQuotes = true
	svc, _ = newService(t, cfg)
	strict, err := svc.RunPrices(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, strict.Table.Len())
	assert.Contains(t, strict.Diagnostics, "Skipped 1 unparseable rows")
}

func TestRunPrices_LoadFailure(t *testing.T) {
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, "bad.csv").
		Return(dataprocessing.LoadResult{}, apperrors.NewValidationError("malformed delimited input", errors.New("bare quote")))
	svc, _ := newService(t, nil, WithTableLoader(loader))

	_, err := svc.RunPrices(context.Background(), "bad.csv")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	loader.AssertExpectations(t)
}

func TestRunPrices_KeepsExistingSymbols(t *testing.T) {
	table := domain.NewTableFromRows(
		[]string{"Date", "Open", "High", "Low", "Close", "symbol"},
		[]domain.Row{
			priceRow("2024-01-01", 10, "AAA"),
			priceRow("2024-01-02", 20, "AAA"),
			priceRow("2024-01-01", 5, "BBB"),
		},
	)
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, "multi.csv").Return(dataprocessing.LoadResult{Table: table}, nil)

	cfg := config.Default()
	cfg.Prices.DedupKeys = []string{"Date", "symbol"}
	svc, _ := newService(t, cfg, WithTableLoader(loader))

	result, err := svc.RunPrices(context.Background(), "multi.csv")
	require.NoError(t, err)

	assert.Empty(t, result.Symbol)
	require.Len(t, result.Summary.Groups, 2)
	assert.Equal(t, "AAA", result.Summary.Groups[0].Key)
	assert.Equal(t, "BBB", result.Summary.Groups[1].Key)
	assert.Equal(t, 0.0, result.Summary.Groups[1].StdDev)
}

func TestRunPrices_EmptyTable(t *testing.T) {
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, "empty.csv").
		Return(dataprocessing.LoadResult{Table: domain.NewTable([]string{"Date", "Open", "High", "Low", "Close"}, nil)}, nil)
	cfg := config.Default()
	cfg.Prices.DefaultSymbol = "XYZ"
	svc, _ := newService(t, cfg, WithTableLoader(loader))

	result, err := svc.RunPrices(context.Background(), "empty.csv")
	require.NoError(t, err)

	assert.Empty(t, result.Missing)
	assert.Equal(t, "XYZ", result.Symbol)
	for _, r := range result.Reports {
		assert.True(t, r.Skipped, r.Stage)
	}
	assert.Equal(t, []string{"Table is empty", "most volatile symbol is none"}, result.Diagnostics)
}

func TestRunLogs_MergesArchives(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteZip(t, dir, "a.zip", testutil.Member{
		Name: "log1.jsonl",
		Lines: []string{
			`{"api_method":"get","latency_ms":5}`,
			`not-json`,
			`{"api_method":"get","latency_ms":15}`,
		},
	})
	second := testutil.WriteZip(t, dir, "b.zip",
		testutil.Member{Name: "log2.jsonl", Lines: []string{`{"api_method":"put","latency_ms":40}`, `{"api_method":"put","latency_ms":-2}`}},
		testutil.Member{Name: "notes.txt", Lines: []string{"hello"}},
	)

	cfg := config.Default()
	cfg.Logs.MemberPrefix = "log"
	svc, _ := newService(t, cfg)

	result, err := svc.RunLogs(context.Background(), first, second)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Walk.LinesRead)
	assert.Equal(t, 1, result.Walk.Malformed)
	assert.Equal(t, []string{"notes.txt"}, result.Walk.Skipped)

	require.Len(t, result.Summary.Groups, 2)
	byKey := map[string]domain.GroupSummary{}
	for _, g := range result.Summary.Groups {
		byKey[g.Key] = g
	}
	assert.InDelta(t, 10.0, byKey["get"].Mean, 1e-9)
	assert.InDelta(t, 40.0, byKey["put"].Mean, 1e-9)
	assert.Equal(t, "get", result.Summary.MostVariable.Key)

	assert.Contains(t, result.Diagnostics, "Skipped archive member notes.txt")
	assert.Contains(t, result.Diagnostics, "Malformed lines skipped: 1")
	assert.Contains(t, result.Diagnostics, "non_negative_latency violations 1")
	assert.Contains(t, result.Diagnostics, "most variable api_method is get")
}

func TestRunLogs_MissingArchiveIsFatal(t *testing.T) {
	svc, handler := newService(t, nil)

	_, err := svc.RunLogs(context.Background(), filepath.Join(t.TempDir(), "absent.zip"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
	assert.True(t, handler.ContainsMessage("archive walk failed"))
}

func TestRunLogs_StopsAtFirstFailure(t *testing.T) {
	walker := new(MockArchiveWalker)
	walker.On("Walk", mock.Anything, "one.zip").Return(&dataprocessing.WalkResult{Archives: []string{"one.zip"}}, nil)
	walker.On("Walk", mock.Anything, "two.zip").Return(nil, apperrors.NewArchiveError("two.zip", errors.New("zip: not a valid zip file")))
	svc, _ := newService(t, nil, WithArchiveWalker(walker))

	_, err := svc.RunLogs(context.Background(), "one.zip", "two.zip", "three.zip")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeArchive))
	walker.AssertNotCalled(t, "Walk", mock.Anything, "three.zip")
}

func TestRunLogs_NoArchives(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.RunLogs(context.Background())

	assert.ErrorIs(t, err, ErrNoArchives)
}

func TestRunLogs_PreservesTraceID(t *testing.T) {
	walker := new(MockArchiveWalker)
	walker.On("Walk", mock.Anything, "x.zip").Return(&dataprocessing.WalkResult{}, nil)
	svc, _ := newService(t, nil, WithArchiveWalker(walker))

	ctx := infrastructure.WithTraceID(context.Background(), "trace-123")
	result, err := svc.RunLogs(ctx, "x.zip")
	require.NoError(t, err)

	assert.Equal(t, "trace-123", result.TraceID)
	assert.True(t, result.Summary.IsEmpty())
	assert.Equal(t, []string{"most variable api_method is none"}, result.Diagnostics)
}

func TestNewSummaryService_InvalidInvariant(t *testing.T) {
	cfg := config.Default()
	cfg.Prices.Invariants = []string{"nonsense"}

	_, err := NewSummaryService(cfg, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func priceRow(date string, close float64, symbol string) domain.Row {
	return domain.Row{
		"Date":   domain.Text(date),
		"Open":   domain.Number(close),
		"High":   domain.Number(close + 1),
		"Low":    domain.Number(close - 1),
		"Close":  domain.Number(close),
		"symbol": domain.Text(symbol),
	}
}

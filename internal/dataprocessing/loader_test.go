package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "datapulse/internal/errors"
	"datapulse/internal/shared/testutil"
	"datapulse/pkg/contracts/domain"
)

func TestTableLoader_CSV(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "AAPL.csv", "\ufeff"+testutil.CSV(
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-01,10,12,9,11,11,1000",
		"2024-01-02,11,13,NA,12,12,",
		",,,,,,",
		"2024-01-03,n/a,14,10,13,13,1200",
	))

	res, err := NewTableLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	table := res.Table

	assert.Zero(t, res.SkippedRows)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}, table.Columns())
	require.Equal(t, 3, table.Len(), "blank rows are skipped")

	assert.Equal(t, domain.KindText, table.Value(0, "Date").Kind())
	assert.Equal(t, domain.KindNumber, table.Value(0, "High").Kind())
	assert.True(t, table.Value(1, "Low").IsMissing())
	assert.True(t, table.Value(1, "Volume").IsMissing())
	assert.True(t, table.Value(2, "Open").IsMissing())

	v, ok := table.Value(2, "Volume").Number()
	require.True(t, ok)
	assert.Equal(t, 1200.0, v)
}

func TestTableLoader_MixedColumnStaysText(t *testing.T) {
	res, err := NewTableLoader(nil).LoadReader(strings.NewReader(testutil.CSV(
		"Date,Close",
		"2024-01-01,10",
		"2024-01-02,oops",
	)))
	require.NoError(t, err)
	table := res.Table

	assert.Equal(t, domain.KindText, table.Value(0, "Close").Kind())
	assert.Equal(t, domain.KindText, table.Value(1, "Close").Kind())
}

func TestTableLoader_DuplicateHeaders(t *testing.T) {
	res, err := NewTableLoader(nil).LoadReader(strings.NewReader(testutil.CSV(
		"Close,Close, ,Close",
		"1,2,3,4",
	)))
	require.NoError(t, err)
	table := res.Table

	assert.Equal(t, []string{"Close", "Close.1", "Unnamed: 2", "Close.2"}, table.Columns())
}

func TestTableLoader_ShortRowsArePadded(t *testing.T) {
	res, err := NewTableLoader(nil).LoadReader(strings.NewReader(testutil.CSV(
		"a,b,c",
		"1",
	)))
	require.NoError(t, err)
	table := res.Table

	require.Equal(t, 1, table.Len())
	assert.True(t, table.Value(0, "c").IsMissing())
}

func TestTableLoader_MissingFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	res, err := NewTableLoader(logger).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
	assert.True(t, res.Table.IsEmpty())
	assert.Empty(t, handler.GetRecords(), "the caller reports a missing file")
}

func TestTableLoader_StrayQuoteKeepsRow(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "notes.csv", testutil.CSV(
		"Date,Close,note",
		"2024-01-01,10,ok",
		`2024-01-02,11,5" screen`,
		"2024-01-03,12,ok",
	))

	res, err := NewTableLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 3, res.Table.Len())
	assert.Zero(t, res.SkippedRows)
	assert.Equal(t, `5" screen`, res.Table.Value(1, "note").String())
	assert.Equal(t, domain.KindNumber, res.Table.Value(2, "Close").Kind())
}

func TestTableLoader_StrictQuotesSkipsRow(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := testutil.WriteFile(t, t.TempDir(), "notes.csv", testutil.CSV(
		"Date,Close,note",
		"2024-01-01,10,ok",
		`2024-01-02,11,5" screen`,
		"2024-01-03,12,ok",
	))

	res, err := NewTableLoader(logger, WithStrictQuotes(true)).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedRows)
	require.Equal(t, 2, res.Table.Len())
	assert.Equal(t, "2024-01-01", res.Table.Value(0, "Date").String())
	assert.Equal(t, "2024-01-03", res.Table.Value(1, "Date").String())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "skipped unparseable rows")
}

func TestTableLoader_HeaderOnly(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "empty.csv", "Date,Close\n")

	res, err := NewTableLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, res.Table.IsEmpty())
	assert.Equal(t, []string{"Date", "Close"}, res.Table.Columns())
}

func TestTableLoader_CustomMissingTokens(t *testing.T) {
	res, err := NewTableLoader(nil, WithMissingTokens([]string{"", "-"})).LoadReader(strings.NewReader(testutil.CSV(
		"a,b",
		"-,NA",
	)))
	require.NoError(t, err)
	table := res.Table

	assert.True(t, table.Value(0, "a").IsMissing())
	s, ok := table.Value(0, "b").Text()
	assert.True(t, ok)
	assert.Equal(t, "NA", s)
}

func TestTableLoader_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Prices"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	rows := [][]any{
		{"Date", "Open", "High", "Low", "Close"},
		{"2024-01-01", 10, 12, 9, 11},
		{"2024-01-02", 11, 13, "#N/A", 12},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "prices.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	for _, loader := range []*TableLoader{
		NewTableLoader(nil),
		NewTableLoader(nil, WithSheet(sheet)),
	} {
		res, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		table := res.Table

		require.Equal(t, 2, table.Len())
		high, ok := table.Value(1, "High").Number()
		require.True(t, ok)
		assert.Equal(t, 13.0, high)
		assert.True(t, table.Value(1, "Low").IsMissing())
	}
}

func TestTableLoader_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewTableLoader(nil, WithSheet("Missing")).Load(context.Background(), path)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

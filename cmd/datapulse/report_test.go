package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapulse/internal/dataprocessing"
	"datapulse/internal/services"
	"datapulse/pkg/contracts/domain"
)

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary domain.Summary
		want    []string
	}{
		{
			name:    "no groups",
			summary: domain.Summary{GroupColumn: "symbol", ValueColumn: "Close"},
			want:    []string{"Summary of Close by symbol:", "(no groups)"},
		},
		{
			name: "groups and ungrouped rows",
			summary: domain.Summary{
				GroupColumn: "api_method",
				ValueColumn: "latency_ms",
				Groups: []domain.GroupSummary{
					{Key: "GET", Rows: 3, Count: 3, Mean: 20, HasMean: true, StdDev: 10},
					{Key: "HEAD", Rows: 1, Count: 0},
				},
				UngroupedRows: 2,
			},
			want: []string{"api_method", "std_dev", "GET", "20.00", "10.00", "HEAD", "2 rows without a api_method value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printSummary(&buf, tt.summary))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPrintLogReport(t *testing.T) {
	var buf bytes.Buffer
	res := &services.LogResult{
		Walk: &dataprocessing.WalkResult{
			Archives:  []string{"a.zip", "b.zip"},
			LinesRead: 4,
			Malformed: 1,
			Records:   []domain.Record{{"api_method": "GET"}, {"api_method": "GET"}, {"api_method": "PUT"}},
		},
		Summary:     domain.Summary{GroupColumn: "api_method", ValueColumn: "latency_ms"},
		Diagnostics: []string{"Malformed lines skipped: 1"},
	}

	require.NoError(t, printLogReport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "== a.zip, b.zip")
	assert.Contains(t, out, "lines read: 4, records: 3, malformed: 1")
	assert.Contains(t, out, "Diagnostics:\n  Malformed lines skipped: 1\n")
}

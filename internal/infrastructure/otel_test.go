package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapulse/internal/config"
	"datapulse/pkg/contracts/domain"
)

func TestInitializeOTel_MetricsEnabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		MetricsEnabled: true,
		TraceExporter:  "none",
		Environment:    "test",
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Tracer)
	assert.Nil(t, providers.TracerProvider)
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.Registry)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)

	// no registry, nothing written
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(path))
	assert.NoFileExists(t, path)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "jaeger"}, nil)
	assert.Error(t, err)
}

func TestPipelineMetrics_WriteMetricsFile(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		MetricsEnabled: true,
		TraceExporter:  "none",
		Environment:    "test",
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordMember(ctx, "log1.jsonl", 3, 2, 1)
	metrics.RecordSkippedMember(ctx)
	metrics.RecordStage(ctx, domain.StageReport{
		Stage:      domain.StageDeduplicate,
		RowsIn:     2,
		RowsOut:    1,
		Duplicates: 1,
	}, 5*time.Millisecond)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "archive_malformed_lines_total")
	assert.Contains(t, text, "cleaning_duplicates_removed_total")
	assert.Contains(t, text, "cleaning_stage_duration_seconds")
}

func TestNoopPipelineMetrics(t *testing.T) {
	m := NoopPipelineMetrics()
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.RecordStage(context.Background(), domain.StageReport{
			Stage:  domain.StageRepair,
			Filled: map[string]int{"Volume": 2},
		}, time.Millisecond)
	})
}

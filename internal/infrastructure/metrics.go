package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"datapulse/pkg/contracts/domain"
)

// PipelineMetrics counts every corrective action taken while ingesting and
// cleaning data, so data loss can be audited outside the printed report.
type PipelineMetrics struct {
	LinesRead           metric.Int64Counter
	RecordsDecoded      metric.Int64Counter
	MalformedLines      metric.Int64Counter
	MembersSkipped      metric.Int64Counter
	CellsFilled         metric.Int64Counter
	RowsDropped         metric.Int64Counter
	CoercionFailures    metric.Int64Counter
	DuplicatesRemoved   metric.Int64Counter
	InvariantViolations metric.Int64Counter
	StageDuration       metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.LinesRead, "archive_lines_read_total", "Total number of lines read from archive members"},
		{&m.RecordsDecoded, "archive_records_decoded_total", "Total number of lines decoded into records"},
		{&m.MalformedLines, "archive_malformed_lines_total", "Total number of lines that failed to decode"},
		{&m.MembersSkipped, "archive_members_skipped_total", "Total number of archive members skipped by prefix filter"},
		{&m.CellsFilled, "cleaning_cells_filled_total", "Total number of missing cells filled with a default"},
		{&m.RowsDropped, "cleaning_rows_dropped_total", "Total number of rows dropped for missing required fields"},
		{&m.CoercionFailures, "cleaning_coercion_failures_total", "Total number of cells that could not be coerced"},
		{&m.DuplicatesRemoved, "cleaning_duplicates_removed_total", "Total number of duplicate rows removed"},
		{&m.InvariantViolations, "cleaning_invariant_violations_total", "Total number of rows rejected by invariants"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.StageDuration, err = meter.Float64Histogram(
		"cleaning_stage_duration_seconds",
		metric.WithDescription("Cleaning stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NoopPipelineMetrics returns instruments that record nothing
func NoopPipelineMetrics() *PipelineMetrics {
	m, _ := NewPipelineMetrics(metricnoop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordStage records the counts carried by a stage report
func (m *PipelineMetrics) RecordStage(ctx context.Context, report domain.StageReport, elapsed time.Duration) {
	stage := metric.WithAttributes(attribute.String("stage", report.Stage))

	m.StageDuration.Record(ctx, elapsed.Seconds(), stage)

	for col, n := range report.Filled {
		m.CellsFilled.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", col)))
	}
	if report.Dropped > 0 {
		m.RowsDropped.Add(ctx, int64(report.Dropped), stage)
	}
	for col, n := range report.CoercionFailures {
		m.CoercionFailures.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", col)))
	}
	if report.Duplicates > 0 {
		m.DuplicatesRemoved.Add(ctx, int64(report.Duplicates))
	}
	for name, n := range report.Violations {
		m.InvariantViolations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("invariant", name)))
	}
}

// RecordMember records the line tallies of one archive member
func (m *PipelineMetrics) RecordMember(ctx context.Context, member string, lines, decoded, malformed int) {
	attrs := metric.WithAttributes(attribute.String("member", member))
	m.LinesRead.Add(ctx, int64(lines), attrs)
	m.RecordsDecoded.Add(ctx, int64(decoded), attrs)
	m.MalformedLines.Add(ctx, int64(malformed), attrs)
}

// RecordSkippedMember records a member rejected by the prefix filter
func (m *PipelineMetrics) RecordSkippedMember(ctx context.Context) {
	m.MembersSkipped.Add(ctx, 1)
}

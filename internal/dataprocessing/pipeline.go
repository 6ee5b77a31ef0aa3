package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"datapulse/internal/infrastructure"
	"datapulse/pkg/contracts/domain"
)

// Stage is one cleaning step. Apply must not modify its input and must accept
// any table, including an empty one.
type Stage interface {
	Name() string
	Apply(t domain.Table) (domain.Table, domain.StageReport)
}

// Pipeline applies stages in the order they were given
type Pipeline struct {
	stages  []Stage
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// NewPipeline creates a pipeline from stages
func NewPipeline(logger *slog.Logger, metrics *infrastructure.PipelineMetrics, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopPipelineMetrics()
	}
	return &Pipeline{
		stages:  stages,
		logger:  infrastructure.WithComponent(logger, "pipeline"),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.TracerName),
	}
}

// Stages returns the stage names in run order
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run feeds t through every stage and returns the final table with one report
// per stage. The input table is left untouched.
func (p *Pipeline) Run(ctx context.Context, t domain.Table) (domain.Table, []domain.StageReport) {
	reports := make([]domain.StageReport, 0, len(p.stages))
	cur := t

	p.logger.DebugContext(ctx, "pipeline started",
		slog.Any("stages", p.Stages()),
		slog.Int("rows", t.Len()))

	for _, s := range p.stages {
		_, span := p.tracer.Start(ctx, "stage."+s.Name(),
			trace.WithAttributes(attribute.Int("rows_in", cur.Len())))

		start := time.Now()
		next, report := s.Apply(cur)
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.Int("rows_out", next.Len()),
			attribute.Bool("skipped", report.Skipped))
		span.End()

		p.metrics.RecordStage(ctx, report, elapsed)
		if !report.Skipped {
			for _, msg := range report.Messages() {
				p.logger.InfoContext(ctx, msg, slog.String("stage", report.Stage))
			}
		}
		p.logger.DebugContext(ctx, "stage complete",
			slog.String("stage", report.Stage),
			slog.Int("rows_in", report.RowsIn),
			slog.Int("rows_out", report.RowsOut),
			slog.Duration("elapsed", elapsed))

		reports = append(reports, report)
		cur = next
	}

	return cur, reports
}

// skipped is the report of a stage handed an empty table
func skipped(stage string) domain.StageReport {
	return domain.StageReport{Stage: stage, Skipped: true}
}

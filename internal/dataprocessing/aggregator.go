package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"datapulse/internal/config"
	"datapulse/internal/infrastructure"
	"datapulse/pkg/contracts/domain"
)

// Aggregator computes per-group statistics of a numeric column
type Aggregator struct {
	logger *slog.Logger
	sortBy string
}

// NewAggregator creates an aggregator. sortBy is config.SortByVariability or
// config.SortByMean; anything else means variability.
func NewAggregator(logger *slog.Logger, sortBy string) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if sortBy != config.SortByMean {
		sortBy = config.SortByVariability
	}
	return &Aggregator{
		logger: infrastructure.WithComponent(logger, "aggregator"),
		sortBy: sortBy,
	}
}

type groupAcc struct {
	label  domain.Value
	rows   int
	values []float64
}

// Summarize groups t by groupColumn and reports the mean and sample standard
// deviation of valueColumn per group. Groups with fewer than two values report
// a deviation of zero. Groups are ordered by label, then stable sorted by
// descending deviation (or mean), so ties keep label order. MostVariable is
// the group with the largest deviation and nil for an empty summary.
func (a *Aggregator) Summarize(ctx context.Context, t domain.Table, groupColumn, valueColumn string) domain.Summary {
	summary := domain.Summary{
		GroupColumn: groupColumn,
		ValueColumn: valueColumn,
		Groups:      []domain.GroupSummary{},
	}
	if t.IsEmpty() || !t.HasColumn(groupColumn) {
		if !t.IsEmpty() {
			a.logger.WarnContext(ctx, "group column not present",
				slog.String("column", groupColumn))
			summary.UngroupedRows = t.Len()
		}
		return summary
	}

	groups := make(map[string]*groupAcc)
	for i := 0; i < t.Len(); i++ {
		label := t.Value(i, groupColumn)
		if label.IsMissing() {
			summary.UngroupedRows++
			continue
		}
		acc, ok := groups[label.Key()]
		if !ok {
			acc = &groupAcc{label: label}
			groups[label.Key()] = acc
		}
		acc.rows++
		if f, ok := ToNumber(t.Value(i, valueColumn)).Number(); ok {
			acc.values = append(acc.values, f)
		}
	}

	accs := make([]*groupAcc, 0, len(groups))
	for _, acc := range groups {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool { return lessValue(accs[i].label, accs[j].label) })

	for _, acc := range accs {
		g := domain.GroupSummary{
			Key:   acc.label.String(),
			Rows:  acc.rows,
			Count: len(acc.values),
		}
		if len(acc.values) > 0 {
			g.Mean = mean(acc.values)
			g.HasMean = true
			g.StdDev = sampleStdDev(acc.values, g.Mean)
		}
		summary.Groups = append(summary.Groups, g)
	}

	if a.sortBy == config.SortByMean {
		sort.SliceStable(summary.Groups, func(i, j int) bool {
			return summary.Groups[i].Mean > summary.Groups[j].Mean
		})
	} else {
		sort.SliceStable(summary.Groups, func(i, j int) bool {
			return summary.Groups[i].StdDev > summary.Groups[j].StdDev
		})
	}

	summary.MostVariable = mostVariable(summary.Groups)

	a.logger.InfoContext(ctx, "summary computed",
		slog.String("group_column", groupColumn),
		slog.String("value_column", valueColumn),
		slog.Int("groups", len(summary.Groups)),
		slog.Int("ungrouped_rows", summary.UngroupedRows))

	return summary
}

// mostVariable returns a copy of the first group with the largest deviation
func mostVariable(groups []domain.GroupSummary) *domain.GroupSummary {
	if len(groups) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(groups); i++ {
		if groups[i].StdDev > groups[best].StdDev {
			best = i
		}
	}
	g := groups[best]
	return &g
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStdDev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// lessValue orders labels by kind, then naturally within a kind
func lessValue(a, b domain.Value) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	switch a.Kind() {
	case domain.KindNumber:
		x, _ := a.Number()
		y, _ := b.Number()
		return x < y
	case domain.KindDate:
		x, _ := a.Date()
		y, _ := b.Date()
		return x.Before(y)
	default:
		x, _ := a.Text()
		y, _ := b.Text()
		return strings.Compare(x, y) < 0
	}
}

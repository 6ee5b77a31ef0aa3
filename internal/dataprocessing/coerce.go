package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"datapulse/internal/config"
	"datapulse/pkg/contracts/domain"
)

// CoerceTypes converts designated columns to dates or numbers. A cell that
// cannot be converted becomes Missing and is counted; it never fails the run.
type CoerceTypes struct {
	Dates   []string
	Numbers []string
	// Layouts are tried in order for date columns. Empty means the defaults.
	Layouts []string
}

func (CoerceTypes) Name() string { return domain.StageCoerce }

func (c CoerceTypes) Apply(t domain.Table) (domain.Table, domain.StageReport) {
	if t.IsEmpty() {
		return t, skipped(domain.StageCoerce)
	}
	report := domain.StageReport{
		Stage:            domain.StageCoerce,
		RowsIn:           t.Len(),
		CoercionFailures: map[string]int{},
	}

	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = config.DefaultDateLayouts
	}

	out := t
	for _, col := range c.Dates {
		if !out.HasColumn(col) {
			continue
		}
		failed := 0
		out = out.MapColumn(col, func(v domain.Value) domain.Value {
			coerced := ToDate(v, layouts)
			if coerced.IsMissing() && !v.IsMissing() {
				failed++
			}
			return coerced
		})
		report.CoercionFailures[col] += failed
	}
	for _, col := range c.Numbers {
		if !out.HasColumn(col) {
			continue
		}
		failed := 0
		out = out.MapColumn(col, func(v domain.Value) domain.Value {
			coerced := ToNumber(v)
			if coerced.IsMissing() && !v.IsMissing() {
				failed++
			}
			return coerced
		})
		report.CoercionFailures[col] += failed
	}

	report.RowsOut = out.Len()
	return out, report
}

// ToNumber converts v to a finite number, or Missing when it cannot
func ToNumber(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindNumber:
		f, _ := v.Number()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.Missing()
		}
		return v
	case domain.KindText:
		s, _ := v.Text()
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return domain.Missing()
		}
		return domain.Number(f)
	default:
		return domain.Missing()
	}
}

// ToDate converts v to a date using the first matching layout, or Missing
func ToDate(v domain.Value, layouts []string) domain.Value {
	switch v.Kind() {
	case domain.KindDate:
		return v
	case domain.KindText:
		s, _ := v.Text()
		s = strings.TrimSpace(s)
		for _, layout := range layouts {
			if d, err := time.Parse(layout, s); err == nil {
				return domain.Date(d)
			}
		}
		return domain.Missing()
	default:
		return domain.Missing()
	}
}

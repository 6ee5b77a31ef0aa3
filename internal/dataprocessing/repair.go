package dataprocessing

import (
	"datapulse/pkg/contracts/domain"
)

// FillRule replaces missing cells of Column with Value
type FillRule struct {
	Column string
	Value  domain.Value
}

// FillZero builds zero-fill rules for quantity columns
func FillZero(columns ...string) []FillRule {
	rules := make([]FillRule, len(columns))
	for i, c := range columns {
		rules[i] = FillRule{Column: c, Value: domain.Number(0)}
	}
	return rules
}

// RepairMissing fills designated columns and drops rows missing a required
// field. Required fields are never filled. A required column the table does
// not have at all makes every row incomplete; RequiredIfPresent columns are
// only checked when the table carries them.
type RepairMissing struct {
	Fill              []FillRule
	Required          []string
	RequiredIfPresent []string
}

func (RepairMissing) Name() string { return domain.StageRepair }

func (r RepairMissing) Apply(t domain.Table) (domain.Table, domain.StageReport) {
	if t.IsEmpty() {
		return t, skipped(domain.StageRepair)
	}
	report := domain.StageReport{Stage: domain.StageRepair, RowsIn: t.Len(), Filled: map[string]int{}}

	out := t
	for _, rule := range r.Fill {
		if !out.HasColumn(rule.Column) {
			continue
		}
		filled := 0
		out = out.MapColumn(rule.Column, func(v domain.Value) domain.Value {
			if v.IsMissing() {
				filled++
				return rule.Value
			}
			return v
		})
		report.Filled[rule.Column] += filled
	}

	required := append([]string(nil), r.Required...)
	for _, c := range r.RequiredIfPresent {
		if out.HasColumn(c) {
			required = append(required, c)
		}
	}

	if len(required) > 0 {
		filled := out
		out = filled.Filter(func(i int) bool {
			for _, c := range required {
				if filled.Value(i, c).IsMissing() {
					return false
				}
			}
			return true
		})
	}

	report.RowsOut = out.Len()
	report.Dropped = report.RowsIn - report.RowsOut
	return out, report
}

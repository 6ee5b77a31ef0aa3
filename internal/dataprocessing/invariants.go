package dataprocessing

import (
	"fmt"

	"datapulse/internal/config"
	"datapulse/pkg/contracts/domain"
)

// Invariant is a named per-row rule. Violated reports whether row i breaks it.
// Rows lacking the values a rule compares do not violate it.
type Invariant struct {
	Name     string
	Violated func(t domain.Table, i int) bool
}

// GreaterOrEqual requires column a to be at least column b
func GreaterOrEqual(name, a, b string) Invariant {
	return Invariant{
		Name: name,
		Violated: func(t domain.Table, i int) bool {
			x, okA := t.Value(i, a).Number()
			y, okB := t.Value(i, b).Number()
			return okA && okB && x < y
		},
	}
}

// Between requires column c to lie within [low, high] of the same row
func Between(name, c, low, high string) Invariant {
	return Invariant{
		Name: name,
		Violated: func(t domain.Table, i int) bool {
			v, ok := t.Value(i, c).Number()
			if !ok {
				return false
			}
			if lo, ok := t.Value(i, low).Number(); ok && v < lo {
				return true
			}
			if hi, ok := t.Value(i, high).Number(); ok && v > hi {
				return true
			}
			return false
		},
	}
}

// NonNegative requires column c to be zero or more
func NonNegative(name, c string) Invariant {
	return Invariant{
		Name: name,
		Violated: func(t domain.Table, i int) bool {
			v, ok := t.Value(i, c).Number()
			return ok && v < 0
		},
	}
}

// PriceInvariants resolves configured invariant names to rules over the
// standard price columns
func PriceInvariants(names []string) ([]Invariant, error) {
	var out []Invariant
	for _, name := range names {
		switch name {
		case config.InvariantHighLow:
			out = append(out, GreaterOrEqual(name, config.ColumnHigh, config.ColumnLow))
		case config.InvariantOHLCBounds:
			out = append(out,
				Between(name, config.ColumnOpen, config.ColumnLow, config.ColumnHigh),
				Between(name, config.ColumnClose, config.ColumnLow, config.ColumnHigh))
		case config.InvariantNonNegativeVolume:
			out = append(out, NonNegative(name, config.ColumnVolume))
		default:
			return nil, fmt.Errorf("unknown invariant %q", name)
		}
	}
	return out, nil
}

// ValidateInvariants removes every row that breaks at least one rule and
// counts violations per rule name. A row is counted once per name even when
// several rules share it.
type ValidateInvariants struct {
	Rules []Invariant
}

func (ValidateInvariants) Name() string { return domain.StageInvariants }

func (v ValidateInvariants) Apply(t domain.Table) (domain.Table, domain.StageReport) {
	if t.IsEmpty() {
		return t, skipped(domain.StageInvariants)
	}
	report := domain.StageReport{
		Stage:      domain.StageInvariants,
		RowsIn:     t.Len(),
		Violations: map[string]int{},
	}

	out := t.Filter(func(i int) bool {
		broken := map[string]bool{}
		for _, rule := range v.Rules {
			if !broken[rule.Name] && rule.Violated(t, i) {
				broken[rule.Name] = true
				report.Violations[rule.Name]++
			}
		}
		return len(broken) == 0
	})

	report.RowsOut = out.Len()
	return out, report
}

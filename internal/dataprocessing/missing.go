package dataprocessing

import (
	"math"

	"datapulse/pkg/contracts/domain"
)

// MissingValues counts Missing cells per column, in column order. Percentages
// are of the row count and rounded to two decimals. An empty table reports
// nothing.
func MissingValues(t domain.Table) []domain.ColumnMissing {
	if t.IsEmpty() {
		return []domain.ColumnMissing{}
	}
	cols := t.Columns()
	out := make([]domain.ColumnMissing, 0, len(cols))
	for _, c := range cols {
		n := 0
		for _, v := range t.Column(c) {
			if v.IsMissing() {
				n++
			}
		}
		pct := float64(n) / float64(t.Len()) * 100
		out = append(out, domain.ColumnMissing{
			Column:            c,
			MissingValues:     n,
			MissingPercentage: math.Round(pct*100) / 100,
		})
	}
	return out
}

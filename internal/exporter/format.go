package exporter

import (
	"strconv"

	"datapulse/pkg/contracts/domain"
)

// formatFloat formats a statistic with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatMean renders a group mean, or an empty cell when the group had no
// numeric values
func formatMean(g domain.GroupSummary) string {
	if !g.HasMean {
		return ""
	}
	return formatFloat(g.Mean)
}

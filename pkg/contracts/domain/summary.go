package domain

import (
	"fmt"
	"sort"
)

// Record is one decoded unit of structured data: a field to value mapping as
// produced by the line decoder.
type Record map[string]any

// GroupSummary holds the aggregate statistics of one group.
type GroupSummary struct {
	// Key is the rendered grouping value (e.g. a symbol or an API method)
	Key string `json:"key"`

	// Rows is the number of rows that fell into the group
	Rows int `json:"rows"`

	// Count is the number of rows whose measured column was numeric
	Count int `json:"count"`

	// Mean is the arithmetic mean of the measured column. Only meaningful when HasMean is set.
	Mean    float64 `json:"mean"`
	HasMean bool    `json:"has_mean"`

	// StdDev is the sample standard deviation. Groups with fewer than two
	// numeric values report zero.
	StdDev float64 `json:"std_dev"`
}

// Summary is the Aggregator's output.
type Summary struct {
	GroupColumn string         `json:"group_column"`
	ValueColumn string         `json:"value_column"`
	Groups      []GroupSummary `json:"groups"`

	// MostVariable is the group with the largest standard deviation, nil when
	// there are no groups.
	MostVariable *GroupSummary `json:"most_variable,omitempty"`

	// UngroupedRows counts rows dropped because their grouping value was missing
	UngroupedRows int `json:"ungrouped_rows"`
}

// IsEmpty reports whether the summary has no groups
func (s Summary) IsEmpty() bool { return len(s.Groups) == 0 }

// ColumnMissing is one line of a missing-value report.
type ColumnMissing struct {
	Column            string  `json:"column"`
	MissingValues     int     `json:"missing_values"`
	MissingPercentage float64 `json:"missing_percentage"`
}

// StageReport records what a single cleaning stage did to a table so that
// every corrective action can be audited.
type StageReport struct {
	Stage   string `json:"stage"`
	RowsIn  int    `json:"rows_in"`
	RowsOut int    `json:"rows_out"`

	// Skipped is set when the input table was empty and the stage passed it through
	Skipped bool `json:"skipped"`

	Filled           map[string]int `json:"filled,omitempty"`
	Dropped          int            `json:"dropped,omitempty"`
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`
	Duplicates       int            `json:"duplicates,omitempty"`
	Violations       map[string]int `json:"violations,omitempty"`
}

// Removed returns how many rows the stage removed
func (r StageReport) Removed() int { return r.RowsIn - r.RowsOut }

// Messages renders the report as human readable audit lines. Skipped reports
// render nothing.
func (r StageReport) Messages() []string {
	if r.Skipped {
		return nil
	}
	var msgs []string
	for _, col := range sortedKeys(r.Filled) {
		msgs = append(msgs, fmt.Sprintf("Filled %d missing values in %s", r.Filled[col], col))
	}
	if r.Dropped > 0 {
		msgs = append(msgs, fmt.Sprintf("Dropped %d rows missing required fields", r.Dropped))
	}
	for _, col := range sortedKeys(r.CoercionFailures) {
		msgs = append(msgs, fmt.Sprintf("Coerced %d unparseable values in %s to missing", r.CoercionFailures[col], col))
	}
	if r.Stage == StageDeduplicate {
		msgs = append(msgs, fmt.Sprintf("Removed %d duplicates", r.Duplicates))
	}
	for _, name := range sortedKeys(r.Violations) {
		msgs = append(msgs, fmt.Sprintf("%s violations %d", name, r.Violations[name]))
	}
	return msgs
}

// Stage names used in reports
const (
	StageRepair      = "repair_missing"
	StageCoerce      = "coerce_types"
	StageDeduplicate = "deduplicate"
	StageInvariants  = "validate_invariants"
)

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

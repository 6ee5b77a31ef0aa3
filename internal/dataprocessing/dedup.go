package dataprocessing

import (
	"strings"

	"datapulse/pkg/contracts/domain"
)

// Deduplicate keeps the first row, in table order, of each distinct key.
// Key columns the table lacks are ignored; with no usable key every column
// forms the key. Missing cells compare equal to each other.
type Deduplicate struct {
	Keys []string
}

func (Deduplicate) Name() string { return domain.StageDeduplicate }

func (d Deduplicate) Apply(t domain.Table) (domain.Table, domain.StageReport) {
	if t.IsEmpty() {
		return t, skipped(domain.StageDeduplicate)
	}

	keys := make([]string, 0, len(d.Keys))
	for _, k := range d.Keys {
		if t.HasColumn(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		keys = t.Columns()
	}

	seen := make(map[string]struct{}, t.Len())
	var sb strings.Builder
	out := t.Filter(func(i int) bool {
		sb.Reset()
		for _, k := range keys {
			sb.WriteString(t.Value(i, k).Key())
			sb.WriteByte(0)
		}
		key := sb.String()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	return out, domain.StageReport{
		Stage:      domain.StageDeduplicate,
		RowsIn:     t.Len(),
		RowsOut:    out.Len(),
		Duplicates: t.Len() - out.Len(),
	}
}

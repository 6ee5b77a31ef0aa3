package dataprocessing

import (
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"datapulse/pkg/contracts/domain"
)

// RecordsToTable builds a Table from decoded records. The column set is the
// union of all record keys: columns appear in the order records introduce them,
// and keys first seen in the same record are ordered by name. A record lacking
// a column gets a Missing cell.
func RecordsToTable(records []domain.Record) domain.Table {
	var columns []string
	seen := make(map[string]struct{})

	for _, rec := range records {
		var fresh []string
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		columns = append(columns, fresh...)
	}

	cells := make([][]domain.Value, len(records))
	for i, rec := range records {
		row := make([]domain.Value, len(columns))
		for j, c := range columns {
			if raw, ok := rec[c]; ok {
				row[j] = ValueOf(raw)
			}
		}
		cells[i] = row
	}

	return domain.NewTable(columns, cells)
}

// ValueOf converts a decoded JSON value into a table cell. Nested objects and
// arrays are kept as their JSON text.
func ValueOf(raw any) domain.Value {
	switch v := raw.(type) {
	case nil:
		return domain.Missing()
	case string:
		return domain.Text(v)
	case float64:
		return domain.Number(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return domain.Number(f)
		}
		return domain.Text(v.String())
	case bool:
		return domain.Text(strconv.FormatBool(v))
	case int:
		return domain.Number(float64(v))
	case int64:
		return domain.Number(float64(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return domain.Missing()
		}
		return domain.Text(string(b))
	}
}

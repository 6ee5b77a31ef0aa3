package domain

// Row is a column name to cell mapping for a single table row.
type Row map[string]Value

// Table is an ordered sequence of rows sharing one column set. Every row holds
// exactly one cell per column; absent data is an explicit Missing cell.
//
// A Table is immutable. Every transformation returns a new Table and leaves the
// receiver valid. Row slices are never written after construction, which lets
// filtered tables share them with their source.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable builds a table from a header and positional cells. Short rows are
// padded with Missing and long rows are truncated. The inputs are copied.
func NewTable(columns []string, cells [][]Value) Table {
	t := Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Value, 0, len(cells)),
	}
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, src := range cells {
		row := make([]Value, len(columns))
		copy(row, src)
		t.rows = append(t.rows, row)
	}
	return t
}

// NewTableFromRows builds a table from keyed rows. Keys outside columns are
// ignored and columns a row does not mention are Missing.
func NewTableFromRows(columns []string, rows []Row) Table {
	cells := make([][]Value, 0, len(rows))
	for _, r := range rows {
		row := make([]Value, len(columns))
		for i, c := range columns {
			row[i] = r[c]
		}
		cells = append(cells, row)
	}
	return NewTable(columns, cells)
}

// Columns returns a copy of the column names in order
func (t Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows
func (t Table) Len() int { return len(t.rows) }

// IsEmpty reports whether the table has no rows
func (t Table) IsEmpty() bool { return len(t.rows) == 0 }

// HasColumn reports whether the column exists
func (t Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at row i in the named column. An unknown column
// yields Missing.
func (t Table) Value(i int, column string) Value {
	j, ok := t.index[column]
	if !ok {
		return Missing()
	}
	return t.rows[i][j]
}

// Row returns row i as a keyed map
func (t Table) Row(i int) Row {
	r := make(Row, len(t.columns))
	for j, c := range t.columns {
		r[c] = t.rows[i][j]
	}
	return r
}

// Rows returns every row as a keyed map
func (t Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Column returns a copy of the named column's cells
func (t Table) Column(name string) []Value {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Filter returns a table holding the rows for which keep returns true, in
// their original order.
func (t Table) Filter(keep func(i int) bool) Table {
	out := Table{columns: t.columns, index: t.index, rows: make([][]Value, 0, len(t.rows))}
	for i, r := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// MapColumn returns a table whose named column is replaced by fn applied to
// each cell. Other columns are unchanged. An unknown column returns t as is.
func (t Table) MapColumn(column string, fn func(Value) Value) Table {
	j, ok := t.index[column]
	if !ok {
		return t
	}
	out := Table{columns: t.columns, index: t.index, rows: make([][]Value, len(t.rows))}
	for i, r := range t.rows {
		row := make([]Value, len(r))
		copy(row, r)
		row[j] = fn(r[j])
		out.rows[i] = row
	}
	return out
}

// WithColumn returns a table with an extra column holding fill in every row.
// If the column already exists t is returned unchanged.
func (t Table) WithColumn(column string, fill Value) Table {
	if t.HasColumn(column) {
		return t
	}
	columns := append(t.Columns(), column)
	cells := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		row := make([]Value, len(columns))
		copy(row, r)
		row[len(columns)-1] = fill
		cells[i] = row
	}
	return NewTable(columns, cells)
}

// Select returns a table with only the named columns, in the given order.
// Unknown names become all-Missing columns.
func (t Table) Select(columns ...string) Table {
	cells := make([][]Value, len(t.rows))
	for i := range t.rows {
		row := make([]Value, len(columns))
		for j, c := range columns {
			row[j] = t.Value(i, c)
		}
		cells[i] = row
	}
	return NewTable(columns, cells)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Table {
	return NewTableFromRows([]string{"Date", "Close"}, []Row{
		{"Date": Text("2024-01-01"), "Close": Number(10)},
		{"Date": Text("2024-01-02")},
		{"Date": Text("2024-01-03"), "Close": Number(12), "Ignored": Text("x")},
	})
}

func TestNewTable_PadsAndCopies(t *testing.T) {
	cols := []string{"a", "b"}
	cells := [][]Value{{Text("1")}, {Text("2"), Text("3"), Text("4")}}

	table := NewTable(cols, cells)
	cols[0] = "mutated"
	cells[0][0] = Text("mutated")

	assert.Equal(t, []string{"a", "b"}, table.Columns())
	assert.Equal(t, "1", table.Value(0, "a").String())
	assert.True(t, table.Value(0, "b").IsMissing())
	assert.Equal(t, "3", table.Value(1, "b").String())
}

func TestTable_Accessors(t *testing.T) {
	table := sample()

	assert.Equal(t, 3, table.Len())
	assert.False(t, table.IsEmpty())
	assert.True(t, table.HasColumn("Close"))
	assert.False(t, table.HasColumn("Ignored"))
	assert.True(t, table.Value(1, "Close").IsMissing())
	assert.True(t, table.Value(0, "nope").IsMissing())
	assert.Nil(t, table.Column("nope"))
	assert.Len(t, table.Column("Close"), 3)
	assert.Equal(t, Row{"Date": Text("2024-01-02"), "Close": Missing()}, table.Row(1))

	assert.True(t, Table{}.IsEmpty())
	assert.Empty(t, Table{}.Columns())
}

func TestTable_CopyOnWrite(t *testing.T) {
	table := sample()
	before := table.Rows()

	filtered := table.Filter(func(i int) bool { return i != 1 })
	mapped := filtered.MapColumn("Close", func(v Value) Value {
		if v.IsMissing() {
			return Number(0)
		}
		return Number(-1)
	})
	extended := mapped.WithColumn("symbol", Text("AAPL"))
	selected := extended.Select("symbol", "Close")

	assert.Equal(t, before, table.Rows())
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, "10", filtered.Value(0, "Close").String())
	assert.Equal(t, "-1", mapped.Value(0, "Close").String())
	assert.False(t, filtered.HasColumn("symbol"))
	assert.Equal(t, []string{"Date", "Close", "symbol"}, extended.Columns())
	assert.Equal(t, "AAPL", extended.Value(1, "symbol").String())
	assert.Equal(t, []string{"symbol", "Close"}, selected.Columns())
}

func TestTable_NoOpTransforms(t *testing.T) {
	table := sample()

	assert.Equal(t, table, table.MapColumn("nope", func(Value) Value { return Number(1) }))
	assert.Equal(t, table, table.WithColumn("Date", Text("x")))
}

func TestTable_ColumnsReturnsCopy(t *testing.T) {
	table := sample()
	cols := table.Columns()
	cols[0] = "changed"

	require.Equal(t, "Date", table.Columns()[0])
}

package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := NewTable(
		[]string{ColMajorCategory, ColMinorCategory, ColStoreCount},
		[][]string{
			{"외식업", "한식", "1200"},
			{"외식업", "중식", "300"},
			{"서비스업", "세탁소", "150"},
		},
	)
	t.setNumeric(ColStoreCount, []float64{1200, 300, 150})
	return t
}

func TestTable_Accessors(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, 3, tbl.RowCount())
	assert.True(t, tbl.HasColumn(ColMinorCategory))
	assert.False(t, tbl.HasColumn("없는컬럼"))

	minors, ok := tbl.Strings(ColMinorCategory)
	require.True(t, ok)
	assert.Equal(t, []string{"한식", "중식", "세탁소"}, minors)

	v, ok := tbl.Float(1, ColStoreCount)
	require.True(t, ok)
	assert.Equal(t, 300.0, v)

	_, ok = tbl.Float(99, ColStoreCount)
	assert.False(t, ok)
}

func TestTable_ShortRowsPadded(t *testing.T) {
	tbl := NewTable([]string{"a", "b", "c"}, [][]string{{"1"}})
	cell, ok := tbl.Cell(0, "c")
	require.True(t, ok)
	assert.Equal(t, "", cell)
}

func TestTable_SelectCarriesNumericColumns(t *testing.T) {
	tbl := sampleTable()

	sel := tbl.Select([]int{2, 0})
	require.Equal(t, 2, sel.RowCount())

	stores, ok := sel.Floats(ColStoreCount)
	require.True(t, ok)
	assert.Equal(t, []float64{150, 1200}, stores)

	minor, _ := sel.Cell(0, ColMinorCategory)
	assert.Equal(t, "세탁소", minor)
}

func TestTable_FilterDoesNotMutateOriginal(t *testing.T) {
	tbl := sampleTable()

	filtered := tbl.Filter(func(row int) bool {
		major, _ := tbl.Cell(row, ColMajorCategory)
		return major == "외식업"
	})
	require.Equal(t, 2, filtered.RowCount())
	assert.Equal(t, 3, tbl.RowCount())

	// Mutating the copy's backing data leaves the original untouched.
	filtered.rows[0][1] = "변조"
	orig, _ := tbl.Cell(0, ColMinorCategory)
	assert.Equal(t, "한식", orig)
}

func TestTable_Records(t *testing.T) {
	tbl := sampleTable()
	records := tbl.Records()
	require.Len(t, records, 3)

	assert.Equal(t, "한식", records[0][ColMinorCategory])
	assert.Equal(t, 1200.0, records[0][ColStoreCount])
}

func TestTable_Clone(t *testing.T) {
	tbl := sampleTable()
	clone := tbl.Clone()

	require.Equal(t, tbl.RowCount(), clone.RowCount())
	clone.rows[2][0] = "변조"
	orig, _ := tbl.Cell(2, ColMajorCategory)
	assert.Equal(t, "서비스업", orig)
}

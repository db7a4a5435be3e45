package dataprocessing

// Canonical column names downstream consumers rely on after normalization.
const (
	ColMajorCategory  = "대분류"
	ColMinorCategory  = "소분류"
	ColStoreCount     = "점포수"
	ColEmployeeCount  = "종사자수"
	ColOperatingYears = "영업기간"
	ColSalesPerArea   = "면적당매출"
	ColWorkersPerArea = "면적당종사자"
)

// NumericColumns lists the canonical columns that are coerced to float64
// during normalization, in their fixed order.
var NumericColumns = []string{
	ColStoreCount,
	ColEmployeeCount,
	ColOperatingYears,
	ColSalesPerArea,
	ColWorkersPerArea,
}

// Table is an in-memory column-addressable table. Cells are stored as
// strings; columns that went through numeric coercion additionally carry a
// parallel float64 slice. A Table handed out by the service layer is always
// a private copy, so callers may not worry about aliasing the cache.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
	numeric map[string][]float64
}

// NewTable builds a table from a header row and data rows. Short rows are
// padded so every row has one cell per header. When the same header occurs
// twice, the first occurrence wins for column lookups.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{
		headers: append([]string(nil), headers...),
		index:   make(map[string]int, len(headers)),
		rows:    make([][]string, 0, len(rows)),
		numeric: make(map[string][]float64),
	}
	for i, h := range t.headers {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for _, row := range rows {
		padded := make([]string, len(headers))
		copy(padded, row)
		t.rows = append(t.rows, padded)
	}
	return t
}

// Headers returns a copy of the column names in order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// IsNumeric reports whether the column has been coerced to numbers.
func (t *Table) IsNumeric(name string) bool {
	_, ok := t.numeric[name]
	return ok
}

// Strings returns a copy of the raw string cells of a column.
func (t *Table) Strings(name string) ([]string, bool) {
	col, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[col]
	}
	return out, true
}

// Floats returns a copy of the coerced values of a numeric column.
func (t *Table) Floats(name string) ([]float64, bool) {
	vals, ok := t.numeric[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals...), true
}

// Cell returns the raw string cell at (row, column name).
func (t *Table) Cell(row int, name string) (string, bool) {
	col, ok := t.index[name]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][col], true
}

// Float returns the coerced value at (row, numeric column name).
func (t *Table) Float(row int, name string) (float64, bool) {
	vals, ok := t.numeric[name]
	if !ok || row < 0 || row >= len(vals) {
		return 0, false
	}
	return vals[row], true
}

// setNumeric installs the coerced values for a column. Called once per
// numeric column by the normalizer.
func (t *Table) setNumeric(name string, vals []float64) {
	t.numeric[name] = vals
}

// Select returns a new table containing the given rows in the given order.
// Numeric columns are carried over. Indices out of range are skipped.
func (t *Table) Select(indices []int) *Table {
	out := &Table{
		headers: append([]string(nil), t.headers...),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]string, 0, len(indices)),
		numeric: make(map[string][]float64, len(t.numeric)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	kept := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(t.rows) {
			continue
		}
		kept = append(kept, i)
		out.rows = append(out.rows, append([]string(nil), t.rows[i]...))
	}
	for name, vals := range t.numeric {
		sel := make([]float64, 0, len(kept))
		for _, i := range kept {
			sel = append(sel, vals[i])
		}
		out.numeric[name] = sel
	}
	return out
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	indices := make([]int, 0, len(t.rows))
	for i := range t.rows {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return t.Select(indices)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	indices := make([]int, len(t.rows))
	for i := range indices {
		indices[i] = i
	}
	return t.Select(indices)
}

// Records renders the table as one map per row, with numeric columns as
// float64 and everything else as string. Intended for JSON responses.
func (t *Table) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(t.rows))
	for i, row := range t.rows {
		record := make(map[string]interface{}, len(t.headers))
		for j, h := range t.headers {
			if t.index[h] != j {
				continue // shadowed duplicate header
			}
			if vals, ok := t.numeric[h]; ok {
				record[h] = vals[i]
			} else {
				record[h] = row[j]
			}
		}
		records = append(records, record)
	}
	return records
}

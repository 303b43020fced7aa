// Package specimen holds the in-memory representation of a specimen catalog:
// rows of loosely typed cells keyed by column header.
package specimen

// Column headers the statistics core reads.
const (
	FieldCountry = "Country"
	FieldState   = "State"
	FieldClass   = "Class"
	FieldOrder   = "Order"
	FieldFamily  = "Family"
)

// Row maps a column header to its cell. A Row is treated as immutable once
// parsed; use With to derive a modified copy.
type Row map[string]Value

// Get returns the cell for key, or Absent when the row has no such column.
func (r Row) Get(key string) Value {
	if r == nil {
		return Value{}
	}
	return r[key]
}

// Has reports whether the row carries the column at all.
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether both rows hold the same columns with equal cells.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Dataset is an ordered sequence of rows plus the header order they were read with.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether name appears in the header.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the cells of one column in row order.
func (d *Dataset) Values(column string) []Value {
	if d == nil {
		return nil
	}
	out := make([]Value, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Get(column)
	}
	return out
}

// Equal compares headers and rows in order.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.Len() != o.Len() {
		return false
	}
	if d == nil || o == nil {
		return d.Len() == 0 && o.Len() == 0
	}
	if len(d.Columns) != len(o.Columns) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range d.Rows {
		if !d.Rows[i].Equal(o.Rows[i]) {
			return false
		}
	}
	return true
}

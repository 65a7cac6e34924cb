// Package row exposes one decoded tabular record. A Row is a read-once view:
// the executing command builds it, the caller converts it into a definitive
// type (via Scanner or explicit Get calls) and the Row is discarded.
package row

import (
	"fmt"
	"strings"

	"github.com/ruslano69/mssqlclient/pkg/sqlvalue"
)

// MissingColumnError reports a cell requested by a name or index the result
// set does not contain.
type MissingColumnError struct {
	Name  string // set for name lookups
	Index int    // set for positional lookups
	Count int    // number of columns in the row
}

func (e *MissingColumnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("row: column %q not found", e.Name)
	}
	return fmt.Sprintf("row: column index %d out of range (%d columns)", e.Index, e.Count)
}

// FieldError wraps a conversion failure with the field name that was being
// decoded, so aggregate decoding errors point at the offending field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v, field: %q", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Row is an ordered sequence of cells plus a case-insensitive name index.
// Column names are not guaranteed unique; the first occurrence wins.
type Row struct {
	columns []string
	cells   []any
	byName  map[string]int // built lazily on first name lookup
}

// New builds a Row over driver-level cell values. The slices are retained,
// not copied; callers hand ownership over.
func New(columns []string, cells []any) *Row {
	return &Row{columns: columns, cells: cells}
}

// Len returns the number of cells.
func (r *Row) Len() int { return len(r.cells) }

// Columns returns the column names in result-set order.
func (r *Row) Columns() []string { return r.columns }

// Get decodes the cell at idx into dst (see sqlvalue.Decode for the
// supported targets).
func (r *Row) Get(idx int, dst any) error {
	if idx < 0 || idx >= len(r.cells) {
		return &MissingColumnError{Index: idx, Count: len(r.cells)}
	}
	return sqlvalue.Decode(dst, r.cells[idx], idx)
}

// GetNamed decodes the first column with the given name (case-insensitive)
// into dst. Conversion failures are wrapped in a FieldError naming the column.
func (r *Row) GetNamed(name string, dst any) error {
	idx, ok := r.index(name)
	if !ok {
		return &MissingColumnError{Name: name, Count: len(r.cells)}
	}
	if err := sqlvalue.Decode(dst, r.cells[idx], idx); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	return nil
}

// Scan decodes all cells positionally into dsts. The number of targets must
// match the number of cells.
func (r *Row) Scan(dsts ...any) error {
	if len(dsts) != len(r.cells) {
		return fmt.Errorf("row: scan target count %d does not match column count %d",
			len(dsts), len(r.cells))
	}
	for i, dst := range dsts {
		if err := sqlvalue.Decode(dst, r.cells[i], i); err != nil {
			return err
		}
	}
	return nil
}

func (r *Row) index(name string) (int, bool) {
	if r.byName == nil {
		r.byName = make(map[string]int, len(r.columns))
		for i, col := range r.columns {
			key := strings.ToLower(col)
			if _, dup := r.byName[key]; !dup {
				r.byName[key] = i
			}
		}
	}
	idx, ok := r.byName[strings.ToLower(name)]
	return idx, ok
}

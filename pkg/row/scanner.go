package row

// Scanner is implemented by types that can populate themselves from one Row.
// Implementations read cells explicitly via GetNamed/Get; there is no
// reflection-based fallback.
//
//	type account struct {
//	    ID   int32
//	    Name string
//	}
//
//	func (a *account) ScanRow(r *row.Row) error {
//	    if err := r.GetNamed("id", &a.ID); err != nil {
//	        return err
//	    }
//	    return r.GetNamed("name", &a.Name)
//	}
type Scanner interface {
	ScanRow(r *Row) error
}

// Value decodes a single-column row into T. It is the counterpart of
// querying scalar results.
func Value[T any](r *Row) (T, error) {
	var v T
	err := r.Get(0, &v)
	return v, err
}

// Values2 through Values5 decode rows of fixed width into scalar tuples, for
// queries whose shape does not warrant a named type.

func Values2[A, B any](r *Row) (A, B, error) {
	var a A
	var b B
	err := r.Scan(&a, &b)
	return a, b, err
}

func Values3[A, B, C any](r *Row) (A, B, C, error) {
	var a A
	var b B
	var c C
	err := r.Scan(&a, &b, &c)
	return a, b, c, err
}

func Values4[A, B, C, D any](r *Row) (A, B, C, D, error) {
	var a A
	var b B
	var c C
	var d D
	err := r.Scan(&a, &b, &c, &d)
	return a, b, c, d, err
}

func Values5[A, B, C, D, E any](r *Row) (A, B, C, D, E, error) {
	var a A
	var b B
	var c C
	var d D
	var e E
	err := r.Scan(&a, &b, &c, &d, &e)
	return a, b, c, d, e, err
}

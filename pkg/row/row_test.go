package row

import (
	"errors"
	"testing"

	"github.com/ruslano69/mssqlclient/pkg/sqlvalue"
)

func TestGet_Positional(t *testing.T) {
	r := New([]string{"id", "name"}, []any{int64(7), "foo"})

	var id int32
	if err := r.Get(0, &id); err != nil || id != 7 {
		t.Errorf("Get(0) = %d, %v", id, err)
	}

	var name string
	if err := r.Get(1, &name); err != nil || name != "foo" {
		t.Errorf("Get(1) = %q, %v", name, err)
	}
}

func TestGet_OutOfRange(t *testing.T) {
	r := New([]string{"a"}, []any{int64(1)})

	var v int64
	err := r.Get(5, &v)
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if mce.Index != 5 || mce.Count != 1 {
		t.Errorf("unexpected error fields: %+v", mce)
	}
}

func TestGetNamed_CaseInsensitive(t *testing.T) {
	r := New([]string{"AccountId", "Name"}, []any{int64(12), "x"})

	var id int64
	if err := r.GetNamed("accountid", &id); err != nil || id != 12 {
		t.Errorf("GetNamed = %d, %v", id, err)
	}
	if err := r.GetNamed("ACCOUNTID", &id); err != nil {
		t.Errorf("upper-case lookup failed: %v", err)
	}
}

func TestGetNamed_DuplicateFirstWins(t *testing.T) {
	r := New([]string{"v", "V"}, []any{int64(1), int64(2)})

	var v int64
	if err := r.GetNamed("v", &v); err != nil {
		t.Fatalf("GetNamed failed: %v", err)
	}
	if v != 1 {
		t.Errorf("duplicate name should resolve to first column, got %d", v)
	}
}

func TestGetNamed_Missing(t *testing.T) {
	r := New([]string{"a"}, []any{int64(1)})

	var v int64
	err := r.GetNamed("nope", &v)
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if mce.Name != "nope" {
		t.Errorf("Name = %q", mce.Name)
	}
}

func TestGetNamed_WrapsConversionError(t *testing.T) {
	r := New([]string{"n"}, []any{nil})

	var v int64
	err := r.GetNamed("n", &v)

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fe.Field != "n" {
		t.Errorf("Field = %q", fe.Field)
	}
	var nve *sqlvalue.NullValueError
	if !errors.As(err, &nve) {
		t.Errorf("FieldError should wrap the NullValueError, got %v", err)
	}
}

func TestScan(t *testing.T) {
	r := New([]string{"a", "b", "c"}, []any{int64(1), "two", nil})

	var a int64
	var b string
	var c *string
	if err := r.Scan(&a, &b, &c); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if a != 1 || b != "two" || c != nil {
		t.Errorf("Scan result: %d %q %v", a, b, c)
	}
}

func TestScan_CountMismatch(t *testing.T) {
	r := New([]string{"a", "b"}, []any{int64(1), int64(2)})

	var a int64
	if err := r.Scan(&a); err == nil {
		t.Error("expected error for target count mismatch")
	}
}

func TestValue(t *testing.T) {
	r := New([]string{""}, []any{int64(2)})
	v, err := Value[int32](r)
	if err != nil || v != 2 {
		t.Errorf("Value = %d, %v", v, err)
	}
}

func TestValuesTuples(t *testing.T) {
	r := New([]string{"Id", "Name", "Active"}, []any{int64(7), "seven", true})

	id, name, err := Values2[int32, string](r)
	if err != nil {
		t.Fatalf("Values2 failed: %v", err)
	}
	if id != 7 || name != "seven" {
		t.Errorf("Values2 = (%d, %q)", id, name)
	}

	id, name, active, err := Values3[int32, string, bool](r)
	if err != nil {
		t.Fatalf("Values3 failed: %v", err)
	}
	if id != 7 || name != "seven" || !active {
		t.Errorf("Values3 = (%d, %q, %v)", id, name, active)
	}

	// Width mismatch is an error, same as Scan.
	if _, _, err := Values2[int32, string](New([]string{"Id"}, []any{int64(1)})); err == nil {
		t.Error("expected error for width mismatch")
	}
}

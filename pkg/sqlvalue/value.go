// Package sqlvalue converts between driver-level cell values and native Go
// types. It is the lowest layer of the client: pkg/row builds on it to decode
// whole records, pkg/params uses Encode for outgoing parameters.
//
// Decoding rules:
//   - SQL NULL into a plain target fails with *NullValueError; a pointer
//     target (*T) receives nil instead.
//   - A wire type that cannot represent the requested native type fails
//     with *ConversionError carrying the column index and both type names.
package sqlvalue

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NullValueError reports a SQL NULL decoded into a non-nullable target.
type NullValueError struct {
	Index int
}

func (e *NullValueError) Error() string {
	return fmt.Sprintf("sqlvalue: column %d is NULL, target is not nullable", e.Index)
}

// ConversionError reports an incompatible wire/native type pair.
type ConversionError struct {
	Index    int
	WireType string // Go representation delivered by the driver
	GoType   string // requested native type
	Cause    error  // optional parse failure detail
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sqlvalue: column %d: cannot convert %s to %s: %v",
			e.Index, e.WireType, e.GoType, e.Cause)
	}
	return fmt.Sprintf("sqlvalue: column %d: cannot convert %s to %s",
		e.Index, e.WireType, e.GoType)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// Decode converts one driver cell value into dst. dst must be a pointer to
// one of the supported scalar types, or a pointer-to-pointer for nullable
// targets. idx is the column index, used only for error reporting.
func Decode(dst any, src any, idx int) error {
	// Raw target: the wire value as delivered, nil on SQL NULL.
	if d, ok := dst.(*any); ok {
		*d = src
		return nil
	}

	// Nullable targets: **T receives nil on SQL NULL, otherwise decodes
	// into a freshly allocated T.
	switch d := dst.(type) {
	case **int64:
		return decodeOpt(d, src, idx)
	case **int32:
		return decodeOpt(d, src, idx)
	case **int16:
		return decodeOpt(d, src, idx)
	case **int8:
		return decodeOpt(d, src, idx)
	case **int:
		return decodeOpt(d, src, idx)
	case **float64:
		return decodeOpt(d, src, idx)
	case **float32:
		return decodeOpt(d, src, idx)
	case **bool:
		return decodeOpt(d, src, idx)
	case **string:
		return decodeOpt(d, src, idx)
	case **[]byte:
		return decodeOpt(d, src, idx)
	case **time.Time:
		return decodeOpt(d, src, idx)
	case **uuid.UUID:
		return decodeOpt(d, src, idx)
	case **decimal.Decimal:
		return decodeOpt(d, src, idx)
	}

	if src == nil {
		return &NullValueError{Index: idx}
	}

	switch d := dst.(type) {
	case *int64:
		return decodeInt(d, src, idx, math.MinInt64, math.MaxInt64)
	case *int32:
		var v int64
		if err := decodeInt(&v, src, idx, math.MinInt32, math.MaxInt32); err != nil {
			return err
		}
		*d = int32(v)
		return nil
	case *int16:
		var v int64
		if err := decodeInt(&v, src, idx, math.MinInt16, math.MaxInt16); err != nil {
			return err
		}
		*d = int16(v)
		return nil
	case *int8:
		var v int64
		if err := decodeInt(&v, src, idx, math.MinInt8, math.MaxInt8); err != nil {
			return err
		}
		*d = int8(v)
		return nil
	case *int:
		var v int64
		if err := decodeInt(&v, src, idx, math.MinInt, math.MaxInt); err != nil {
			return err
		}
		*d = int(v)
		return nil
	case *float64:
		return decodeFloat(d, src, idx)
	case *float32:
		var v float64
		if err := decodeFloat(&v, src, idx); err != nil {
			return err
		}
		*d = float32(v)
		return nil
	case *bool:
		return decodeBool(d, src, idx)
	case *string:
		return decodeString(d, src, idx)
	case *[]byte:
		return decodeBytes(d, src, idx)
	case *time.Time:
		if v, ok := src.(time.Time); ok {
			*d = v
			return nil
		}
		return convErr(src, "time.Time", idx, nil)
	case *uuid.UUID:
		return decodeUUID(d, src, idx)
	case *decimal.Decimal:
		return decodeDecimal(d, src, idx)
	default:
		return convErr(src, fmt.Sprintf("%T", dst), idx, nil)
	}
}

// decodeOpt handles the nullable (**T) targets.
func decodeOpt[T any](dst **T, src any, idx int) error {
	if src == nil {
		*dst = nil
		return nil
	}
	v := new(T)
	if err := Decode(v, src, idx); err != nil {
		return err
	}
	*dst = v
	return nil
}

func decodeInt(dst *int64, src any, idx int, min, max int64) error {
	var v int64
	switch s := src.(type) {
	case int64:
		v = s
	case bool:
		// BIT arrives as bool from the driver
		if s {
			v = 1
		}
	default:
		return convErr(src, "integer", idx, nil)
	}

	if v < min || v > max {
		return convErr(src, "integer", idx,
			fmt.Errorf("value %d out of range [%d, %d]", v, min, max))
	}

	*dst = v
	return nil
}

func decodeFloat(dst *float64, src any, idx int) error {
	switch s := src.(type) {
	case float64:
		*dst = s
		return nil
	case int64:
		*dst = float64(s)
		return nil
	case []byte:
		// DECIMAL/NUMERIC columns arrive as text bytes
		return parseFloat(dst, string(s), src, idx)
	case string:
		return parseFloat(dst, s, src, idx)
	default:
		return convErr(src, "float", idx, nil)
	}
}

func parseFloat(dst *float64, s string, src any, idx int) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return convErr(src, "float", idx, err)
	}
	*dst = v
	return nil
}

func decodeBool(dst *bool, src any, idx int) error {
	switch s := src.(type) {
	case bool:
		*dst = s
		return nil
	case int64:
		*dst = s != 0
		return nil
	default:
		return convErr(src, "bool", idx, nil)
	}
}

func decodeString(dst *string, src any, idx int) error {
	switch s := src.(type) {
	case string:
		*dst = s
		return nil
	case []byte:
		*dst = string(s)
		return nil
	default:
		return convErr(src, "string", idx, nil)
	}
}

func decodeBytes(dst *[]byte, src any, idx int) error {
	switch s := src.(type) {
	case []byte:
		b := make([]byte, len(s))
		copy(b, s)
		*dst = b
		return nil
	case string:
		*dst = []byte(s)
		return nil
	default:
		return convErr(src, "[]byte", idx, nil)
	}
}

func decodeDecimal(dst *decimal.Decimal, src any, idx int) error {
	var text string
	switch s := src.(type) {
	case []byte:
		text = string(s)
	case string:
		text = s
	case int64:
		*dst = decimal.NewFromInt(s)
		return nil
	case float64:
		*dst = decimal.NewFromFloat(s)
		return nil
	default:
		return convErr(src, "decimal.Decimal", idx, nil)
	}

	v, err := decimal.NewFromString(text)
	if err != nil {
		return convErr(src, "decimal.Decimal", idx, err)
	}
	*dst = v
	return nil
}

func convErr(src any, goType string, idx int, cause error) error {
	wire := "NULL"
	if src != nil {
		wire = fmt.Sprintf("%T", src)
	}
	return &ConversionError{Index: idx, WireType: wire, GoType: goType, Cause: cause}
}

package sqlvalue

import (
	"fmt"
	"time"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Encode converts a native value into a form the driver can bind as a
// parameter. nil encodes SQL NULL; pointers encode their pointee, with a nil
// pointer again meaning NULL.
func Encode(v any) (any, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil

	case int:
		return int64(p), nil
	case int8:
		return int64(p), nil
	case int16:
		return int64(p), nil
	case int32:
		return int64(p), nil
	case int64, float32, float64, bool, string, []byte, time.Time:
		return p, nil

	case uuid.UUID:
		return mssql.UniqueIdentifier(p), nil
	case mssql.UniqueIdentifier:
		// already encoded; Encode is idempotent over its own output
		return p, nil
	case decimal.Decimal:
		// The driver binds decimals from their text form.
		return p.String(), nil

	case *int:
		return encodePtr(p)
	case *int8:
		return encodePtr(p)
	case *int16:
		return encodePtr(p)
	case *int32:
		return encodePtr(p)
	case *int64:
		return encodePtr(p)
	case *float32:
		return encodePtr(p)
	case *float64:
		return encodePtr(p)
	case *bool:
		return encodePtr(p)
	case *string:
		return encodePtr(p)
	case *time.Time:
		return encodePtr(p)
	case *uuid.UUID:
		return encodePtr(p)
	case *decimal.Decimal:
		return encodePtr(p)

	default:
		return nil, fmt.Errorf("sqlvalue: unsupported parameter type %T", v)
	}
}

func encodePtr[T any](p *T) (any, error) {
	if p == nil {
		return nil, nil
	}
	return Encode(*p)
}

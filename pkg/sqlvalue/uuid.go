package sqlvalue

import (
	"github.com/google/uuid"
)

// UNIQUEIDENTIFIER travels in mixed-endian order: the first three groups are
// little-endian, the rest big-endian. swapGUID converts between wire order
// and the canonical RFC 4122 byte order; the transform is its own inverse.
func swapGUID(b [16]byte) [16]byte {
	return [16]byte{
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15],
	}
}

// GUIDToUUID converts 16 wire-order bytes into a uuid.UUID.
func GUIDToUUID(b [16]byte) uuid.UUID {
	return uuid.UUID(swapGUID(b))
}

// UUIDToGUID converts a uuid.UUID into wire-order bytes.
func UUIDToGUID(u uuid.UUID) [16]byte {
	return swapGUID([16]byte(u))
}

func decodeUUID(dst *uuid.UUID, src any, idx int) error {
	switch s := src.(type) {
	case []byte:
		if len(s) != 16 {
			return convErr(src, "uuid.UUID", idx, nil)
		}
		var b [16]byte
		copy(b[:], s)
		*dst = GUIDToUUID(b)
		return nil
	case string:
		u, err := uuid.Parse(s)
		if err != nil {
			return convErr(src, "uuid.UUID", idx, err)
		}
		*dst = u
		return nil
	default:
		return convErr(src, "uuid.UUID", idx, nil)
	}
}

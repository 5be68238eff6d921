package session

import (
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// decodeValue turns one raw column value into nil, bool, int64, float64 or
// string. Only boolean, integer and floating-point types are decoded; every
// other type keeps the text the server sent, which is lossless for numeric,
// timestamps, json and the rest.
func decodeValue(m *pgtype.Map, fd pgconn.FieldDescription, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	switch fd.DataTypeOID {
	case pgtype.BoolOID, pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID, pgtype.OIDOID,
		pgtype.Float4OID, pgtype.Float8OID:
	default:
		if fd.Format == pgtype.BinaryFormatCode {
			return nil, fmt.Errorf("column %q: binary format is not supported for type %d", fd.Name, fd.DataTypeOID)
		}
		return string(src), nil
	}

	t, ok := m.TypeForOID(fd.DataTypeOID)
	if !ok {
		return string(src), nil
	}
	v, err := t.Codec.DecodeValue(m, fd.DataTypeOID, fd.Format, src)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", fd.Name, err)
	}

	switch v := v.(type) {
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float32:
		return finiteOrText(float64(v), src), nil
	case float64:
		return finiteOrText(v, src), nil
	}
	return v, nil
}

// finiteOrText keeps NaN and the infinities as the server's text form since
// JSON has no literal for them.
func finiteOrText(f float64, src []byte) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return string(src)
	}
	return f
}

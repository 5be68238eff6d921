// Package serializer encodes simple query results and notifications into the
// JSON arrays handed back across the bridge.
//
// A query result is encoded as an array whose elements appear in server
// response order: each row becomes an object keyed by column name (in column
// order) and each command completion becomes a bare integer:
//
//	[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}, 3]
//
// Notifications are encoded as an array of {"channel", "payload"} objects.
package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tomyedwab/pgbridge/pgproxy/types"
)

// AnonymousColumn is the name PostgreSQL gives to a computed column that has
// no alias, e.g. the single column of "SELECT 1+1".
const AnonymousColumn = "?column?"

// ErrInvalidUTF8 is returned for text that is not valid UTF-8. JSON encoding
// would otherwise replace the offending bytes with U+FFFD.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 text")

// EncodeMessages encodes a simple query response stream.
func EncodeMessages(messages []types.Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, msg := range messages {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch m := msg.(type) {
		case types.Row:
			if err := writeRow(&buf, m); err != nil {
				return nil, err
			}
		case types.CommandComplete:
			fmt.Fprintf(&buf, "%d", m.RowsAffected)
		default:
			return nil, fmt.Errorf("unsupported message type %T", msg)
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// EncodeNotifications encodes notifications in the order given.
func EncodeNotifications(notifications []types.Notification) ([]byte, error) {
	if notifications == nil {
		notifications = []types.Notification{}
	}
	for _, n := range notifications {
		if !utf8.ValidString(n.Channel) || !utf8.ValidString(n.Payload) {
			return nil, fmt.Errorf("notification on %q: %w", n.Channel, ErrInvalidUTF8)
		}
	}
	return marshal(notifications)
}

// ColumnKeys resolves the object keys used for a row with the given column
// names. Anonymous, empty and repeated names are replaced by column_<i>, where
// i is the zero-based column position, so every key in a row is unique.
func ColumnKeys(columns []string) []string {
	keys := make([]string, len(columns))
	used := make(map[string]struct{}, len(columns))
	for i, name := range columns {
		key := name
		if _, taken := used[key]; taken || key == AnonymousColumn || key == "" {
			key = fmt.Sprintf("column_%d", i)
			for n := 1; ; n++ {
				if _, taken := used[key]; !taken {
					break
				}
				key = fmt.Sprintf("column_%d_%d", i, n)
			}
		}
		used[key] = struct{}{}
		keys[i] = key
	}
	return keys
}

func writeRow(buf *bytes.Buffer, row types.Row) error {
	if len(row.Columns) != len(row.Values) {
		return fmt.Errorf("row has %d columns but %d values", len(row.Columns), len(row.Values))
	}
	buf.WriteByte('{')
	for i, key := range ColumnKeys(row.Columns) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !utf8.ValidString(key) {
			return fmt.Errorf("column %q: %w", key, ErrInvalidUTF8)
		}
		if text, ok := row.Values[i].(string); ok && !utf8.ValidString(text) {
			return fmt.Errorf("column %q: %w", key, ErrInvalidUTF8)
		}
		k, err := marshal(key)
		if err != nil {
			return err
		}
		v, err := marshal(row.Values[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}

// marshal is json.Marshal without HTML escaping, so text values reach the
// caller byte-for-byte.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

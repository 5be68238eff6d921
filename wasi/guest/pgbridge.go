//go:build wasip1

// Package guest gives a WebAssembly guest access to PostgreSQL through the
// host functions registered by wasi/host.
//
// The host keeps one connection per guest instance. Calls are synchronous,
// and a failed call is reported by the host through LastError, which these
// wrappers turn into a Go error.
package guest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tomyedwab/pgbridge/pgproxy/types"
)

//go:wasmimport env pg_connect
func pg_connect(dsn string) int32

//go:wasmimport env pg_simple_query
func pg_simple_query(sql string, destPtr *uint32) int32

//go:wasmimport env pg_notifications
func pg_notifications(timeoutMillis int32, destPtr *uint32) int32

//go:wasmimport env pg_connected
func pg_connected() int32

//go:wasmimport env pg_last_error
func pg_last_error(destPtr *uint32) int32

// Connect opens the host connection. It does nothing if one is already open.
func Connect(dsn string) error {
	if pg_connect(dsn) == 0 {
		return hostError()
	}
	return nil
}

// Connected reports whether the host holds a live connection.
func Connected() bool {
	return pg_connected() != 0
}

// LastError returns the host's description of the last failed call, or "".
func LastError() string {
	var destPtr uint32
	size := pg_last_error(&destPtr)
	return string(takeBytes(destPtr, size))
}

// SimpleQuery runs sql and returns the encoded result array.
func SimpleQuery(sql string) ([]byte, error) {
	var destPtr uint32
	size := pg_simple_query(sql, &destPtr)
	if size < 0 {
		return nil, hostError()
	}
	return takeBytes(destPtr, size), nil
}

// Query runs sql and decodes the result array. Elements are either
// map[string]any for rows or json.Number for command completions.
func Query(sql string) ([]any, error) {
	out, err := SimpleQuery(sql)
	if err != nil {
		return nil, err
	}
	var result []any
	if err := decode(out, &result); err != nil {
		return nil, fmt.Errorf("decoding query result: %w", err)
	}
	return result, nil
}

// Notifications waits up to timeoutMillis for notifications and returns
// them in arrival order.
func Notifications(timeoutMillis int32) ([]types.Notification, error) {
	var destPtr uint32
	size := pg_notifications(timeoutMillis, &destPtr)
	if size < 0 {
		return nil, hostError()
	}
	var result []types.Notification
	if err := decode(takeBytes(destPtr, size), &result); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return result, nil
}

func hostError() error {
	msg := LastError()
	if msg == "" {
		msg = "unknown host error"
	}
	return errors.New(msg)
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

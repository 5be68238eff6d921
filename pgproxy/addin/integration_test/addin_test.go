// Package integration_test exercises the addin registry against a running
// PostgreSQL instance.
//
// Run with: go test -tags=integration ./pgproxy/...
//
//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("POSTGRES_HOST", "localhost"),
		getenv("POSTGRES_PORT", "5432"),
		getenv("POSTGRES_USER", "postgres"),
		getenv("POSTGRES_PASSWORD", "postgres"),
		getenv("POSTGRES_DB", "pgbridge_test"),
	)
}

func newConnected(t *testing.T) *addin.Addin {
	t.Helper()
	ctx := context.Background()
	a := addin.New(ctx)
	t.Cleanup(func() { a.Close(ctx) })

	_, ok := a.CallMethod(ctx, "Connect", addin.StringValue(testDSN()))
	require.True(t, ok, lastError(t, a))
	return a
}

func lastError(t *testing.T, a *addin.Addin) string {
	t.Helper()
	v, ok := a.GetProperty("LastError")
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	return s
}

func blob(t *testing.T, v addin.Variant) string {
	t.Helper()
	b, err := v.AsBlob()
	require.NoError(t, err)
	return string(b)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	a := newConnected(t)

	v, ok := a.GetProperty("Connected")
	require.True(t, ok)
	connected, err := v.AsBool()
	require.NoError(t, err)
	assert.True(t, connected)

	res, ok := a.CallMethod(ctx, "SimpleQuery", addin.StringValue("SELECT 1 AS one"))
	require.True(t, ok)
	assert.Equal(t, `[{"one":1}]`, blob(t, res))

	res, ok = a.CallMethod(ctx, "SimpleQuery", addin.StringValue("SELECT 1+1"))
	require.True(t, ok)
	assert.Equal(t, `[{"column_0":2}]`, blob(t, res))

	res, ok = a.CallMethod(ctx, "Notifications", addin.Int32Value(100))
	require.True(t, ok)
	assert.Equal(t, `[]`, blob(t, res))
	assert.Equal(t, "", lastError(t, a))
}

func TestLastErrorFollowsMostRecentCall(t *testing.T) {
	ctx := context.Background()
	a := newConnected(t)

	_, ok := a.CallMethod(ctx, "SimpleQuery", addin.StringValue("SELECT * FROM table_that_does_not_exist"))
	require.False(t, ok)
	assert.Contains(t, lastError(t, a), "simple query: query error:")
	assert.Contains(t, lastError(t, a), "table_that_does_not_exist")

	_, ok = a.CallMethod(ctx, "Notifications", addin.Int32Value(-5))
	require.False(t, ok)
	assert.Equal(t, "notifications: validation error: timeout must be >= 0, got -5", lastError(t, a))

	_, ok = a.CallMethod(ctx, "SimpleQuery", addin.StringValue("SELECT 1"))
	require.True(t, ok)
	assert.Equal(t, "", lastError(t, a))
}

func TestReconnectKeepsConnection(t *testing.T) {
	ctx := context.Background()
	a := newConnected(t)

	_, ok := a.CallMethod(ctx, "Connect", addin.StringValue("host=does-not-exist.invalid"))
	require.True(t, ok)
	assert.Equal(t, "", lastError(t, a))

	v, _ := a.GetProperty("Connected")
	connected, _ := v.AsBool()
	assert.True(t, connected)
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	ctx := context.Background()
	a := newConnected(t)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			res, ok := a.CallMethod(ctx, "SimpleQuery", addin.StringValue(fmt.Sprintf("SELECT %d AS n", i)))
			if !ok {
				return fmt.Errorf("query %d failed", i)
			}
			b, err := res.AsBlob()
			if err != nil {
				return err
			}
			if want := fmt.Sprintf(`[{"n":%d}]`, i); string(b) != want {
				return fmt.Errorf("query %d: got %s, want %s", i, b, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

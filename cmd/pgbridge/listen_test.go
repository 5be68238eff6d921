package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenSQL(t *testing.T) {
	assert.Equal(t, `LISTEN "jobs"`, listenSQL([]string{"jobs"}))
	assert.Equal(t, `LISTEN "jobs"; LISTEN "Audit Log"`, listenSQL([]string{"jobs", "Audit Log"}))
	assert.Equal(t, `LISTEN "a""b"`, listenSQL([]string{`a"b`}))
}

func TestPollPrintsNonEmptyBatches(t *testing.T) {
	batches := []string{`[]`, `[{"channel":"jobs","payload":"1"}]`, `[]`}
	var (
		out   bytes.Buffer
		calls int
	)
	err := poll(context.Background(), &out, len(batches), func(context.Context) ([]byte, error) {
		calls++
		return []byte(batches[calls-1]), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "[{\"channel\":\"jobs\",\"payload\":\"1\"}]\n", out.String())
}

func TestPollStopsQuietlyWhenInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := poll(ctx, &bytes.Buffer{}, 0, func(ctx context.Context) ([]byte, error) {
		calls++
		cancel()
		return nil, errors.New("notifications: protocol error: context canceled")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPollReturnsFetchErrors(t *testing.T) {
	err := poll(context.Background(), &bytes.Buffer{}, 0, func(context.Context) ([]byte, error) {
		return nil, errors.New("notifications: not connected")
	})
	assert.EqualError(t, err, "notifications: not connected")
}

func TestDescriptionListsBridgeSurface(t *testing.T) {
	d := description()
	for _, name := range []string{"Connect", "SimpleQuery", "Notifications", "Connected", "LastError"} {
		assert.Contains(t, d, name)
	}
}

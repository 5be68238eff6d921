// Package session owns a single PostgreSQL connection and implements the
// operations exposed across the bridge: connecting, running simple queries
// and draining LISTEN/NOTIFY notifications.
//
// A Session is not safe for concurrent use. The embedding adaptor is expected
// to serialize every call on one instance.
package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgconn/ctxwatch"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/types"
)

// Session holds at most one connection for its whole lifetime.
type Session struct {
	conn    *pgconn.PgConn
	typeMap *pgtype.Map

	// Notifications delivered by the connection, oldest first, waiting to be
	// drained.
	pending []types.Notification
}

// New returns a disconnected session.
func New() *Session {
	return &Session{typeMap: pgtype.NewMap()}
}

// Connect establishes the connection. If the session is already connected
// this is a no-op, even when connString differs from the one used before.
//
// No TLS is negotiated, whatever sslmode the connection string asks for.
func (s *Session) Connect(ctx context.Context, connString string) error {
	const op = "connect"

	if s.conn != nil {
		return nil
	}

	config, err := pgconn.ParseConfig(connString)
	if err != nil {
		return newError(ConnectionError, op, err)
	}
	disableTLS(config)
	// Text values and payloads are passed through as Go strings, so the
	// server must convert them to UTF-8.
	config.RuntimeParams["client_encoding"] = "UTF8"
	config.OnNotification = s.onNotification
	// Expire reads with a deadline instead of sending a cancel request, so
	// a timed-out wait for notifications leaves the connection usable.
	config.BuildContextWatcherHandler = func(pgConn *pgconn.PgConn) ctxwatch.Handler {
		return &pgconn.DeadlineContextWatcherHandler{Conn: pgConn.Conn()}
	}

	conn, err := pgconn.ConnectConfig(ctx, config)
	if err != nil {
		slogctx.FromCtx(ctx).Warn("connect failed", "host", config.Host, "error", err)
		return newError(ConnectionError, op, err)
	}

	slogctx.FromCtx(ctx).Debug("connected", "host", config.Host, "database", config.Database, "pid", conn.PID())
	s.conn = conn
	return nil
}

// Connected reports whether the session holds a connection that the driver
// has not seen closed.
func (s *Session) Connected() bool {
	return s.conn != nil && !s.conn.IsClosed()
}

// Close closes the connection, if any. It is meant for the owner of the
// session when it is torn down; the bridge itself never calls it.
func (s *Session) Close(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(ctx)
}

func (s *Session) requireConnection(op string) (*pgconn.PgConn, error) {
	if !s.Connected() {
		return nil, newError(NotConnectedError, op, nil)
	}
	return s.conn, nil
}

// disableTLS strips TLS from the primary host and every fallback. The
// plaintext fallbacks that sslmode=prefer adds then duplicate their TLS
// counterparts, so each host is kept only once.
func disableTLS(config *pgconn.Config) {
	config.TLSConfig = nil
	for _, fallback := range config.Fallbacks {
		fallback.TLSConfig = nil
	}

	hostPort := func(host string, port uint16) string { return fmt.Sprintf("%s:%d", host, port) }
	primary := hostPort(config.Host, config.Port)
	config.Fallbacks = lo.Filter(
		lo.UniqBy(config.Fallbacks, func(f *pgconn.FallbackConfig) string { return hostPort(f.Host, f.Port) }),
		func(f *pgconn.FallbackConfig, _ int) bool { return hostPort(f.Host, f.Port) != primary },
	)
}

func (s *Session) onNotification(_ *pgconn.PgConn, n *pgconn.Notification) {
	s.pending = append(s.pending, types.Notification{
		PID:     n.PID,
		Channel: n.Channel,
		Payload: n.Payload,
	})
}

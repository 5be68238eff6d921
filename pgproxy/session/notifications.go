package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/serializer"
)

// pollInterval bounds the read used to pick up notifications the server has
// already sent without waiting for new ones.
const pollInterval = time.Millisecond

// Notifications drains pending notifications and returns them as a JSON
// array in arrival order.
//
// With timeoutMillis == 0 it only collects what the server has already sent
// and does not wait for anything new. With timeoutMillis > 0 and nothing
// pending it blocks for up to that long for a first notification, then keeps
// draining whatever else is already available. An elapsed timeout yields an
// empty array, not an error. There is no way to interrupt the wait.
func (s *Session) Notifications(ctx context.Context, timeoutMillis int32) ([]byte, error) {
	const op = "notifications"

	conn, err := s.requireConnection(op)
	if err != nil {
		return nil, err
	}
	if timeoutMillis < 0 {
		return nil, newError(ValidationError, op, fmt.Errorf("timeout must be >= 0, got %d", timeoutMillis))
	}

	if timeoutMillis > 0 && len(s.pending) == 0 {
		if _, err := wait(ctx, conn, time.Duration(timeoutMillis)*time.Millisecond); err != nil {
			slogctx.FromCtx(ctx).Warn("waiting for notifications failed", "error", err)
			return nil, newError(ProtocolError, op, err)
		}
	}

	for {
		got, err := wait(ctx, conn, pollInterval)
		if err != nil {
			slogctx.FromCtx(ctx).Warn("draining notifications failed", "error", err)
			return nil, newError(ProtocolError, op, err)
		}
		if !got {
			break
		}
	}

	drained := s.pending
	s.pending = nil

	out, err := serializer.EncodeNotifications(drained)
	if err != nil {
		return nil, newError(SerializationError, op, err)
	}

	slogctx.FromCtx(ctx).Debug("notifications", "count", len(drained), "timeout_ms", timeoutMillis)
	return out, nil
}

// wait reads from the connection for up to d. It reports whether a
// notification arrived; reaching the deadline is not an error. Received
// notifications land in the session's queue through onNotification.
func wait(ctx context.Context, conn *pgconn.PgConn, d time.Duration) (bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := conn.WaitForNotification(waitCtx)
	if err == nil {
		return true, nil
	}
	if pgconn.Timeout(err) && ctx.Err() == nil {
		return false, nil
	}
	return false, err
}

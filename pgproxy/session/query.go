package session

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/serializer"
	"github.com/tomyedwab/pgbridge/pgproxy/types"
)

// SimpleQuery runs sql with the simple query protocol, so it may hold several
// statements separated by semicolons and takes no parameters. The response
// stream is returned as a JSON array of row objects and affected-row counts.
//
// If any statement fails the whole call fails and nothing is returned, even
// though earlier statements may already have been committed by the server.
func (s *Session) SimpleQuery(ctx context.Context, sql string) ([]byte, error) {
	const op = "simple query"

	conn, err := s.requireConnection(op)
	if err != nil {
		return nil, err
	}

	messages, err := s.execute(ctx, conn, sql)
	if err != nil {
		slogctx.FromCtx(ctx).Warn("simple query failed", "error", err)
		return nil, newError(QueryError, op, err)
	}

	out, err := serializer.EncodeMessages(messages)
	if err != nil {
		return nil, newError(SerializationError, op, err)
	}

	slogctx.FromCtx(ctx).Debug("simple query", "messages", len(messages), "bytes", len(out))
	return out, nil
}

func (s *Session) execute(ctx context.Context, conn *pgconn.PgConn, sql string) ([]types.Message, error) {
	var messages []types.Message

	mrr := conn.Exec(ctx, sql)
	for mrr.NextResult() {
		rr := mrr.ResultReader()
		fields := rr.FieldDescriptions()

		var columns []string
		if len(fields) > 0 {
			columns = make([]string, len(fields))
			for i, fd := range fields {
				columns[i] = fd.Name
			}
		}

		for rr.NextRow() {
			raw := rr.Values()
			values := make([]any, len(raw))
			for i, src := range raw {
				v, err := decodeValue(s.typeMap, fields[i], src)
				if err != nil {
					rr.Close()
					mrr.Close()
					return nil, err
				}
				values[i] = v
			}
			messages = append(messages, types.Row{Columns: columns, Values: values})
		}

		tag, err := rr.Close()
		if err != nil {
			mrr.Close()
			return nil, err
		}
		if len(fields) == 0 && tag.String() != "" {
			messages = append(messages, types.CommandComplete{RowsAffected: tag.RowsAffected()})
		}
	}
	if err := mrr.Close(); err != nil {
		return nil, err
	}
	return messages, nil
}

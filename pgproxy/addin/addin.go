// Package addin adapts a session.Session to a host that can only call named
// methods and read named properties with primitive values, and that has no
// way to receive an error from a call.
//
// Every method call reports whether it succeeded; on failure the host reads
// the LastError property to find out why. A successful call clears LastError.
//
//	a := addin.New(ctx)
//	a.CallMethod(ctx, "Connect", addin.StringValue("host=localhost dbname=app"))
//	res, ok := a.CallMethod(ctx, "SimpleQuery", addin.StringValue("SELECT 1 AS one"))
//	if !ok {
//	    msg, _ := a.GetProperty("LastError")
//	    ...
//	}
//
// An Addin serializes all calls on one mutex, so it may be shared by
// goroutines even though the underlying session may not.
package addin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/session"
)

// Name is the name the component registers under with its host.
const Name = "Postgres"

var (
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownProperty = errors.New("unknown property")
)

type Addin struct {
	ID string

	mu      sync.Mutex
	session *session.Session
	sink    session.ErrorSink
	logger  *slog.Logger
}

// New creates a disconnected instance. Its logger is taken from ctx and
// tagged with the instance ID.
func New(ctx context.Context) *Addin {
	id := uuid.NewString()
	return &Addin{
		ID:      id,
		session: session.New(),
		logger:  slogctx.FromCtx(ctx).With("addin", Name, "instance", id),
	}
}

// CallMethod invokes a registered method by case-insensitive name. The
// returned bool is false when the call failed, in which case LastError holds
// the reason.
func (a *Addin) CallMethod(ctx context.Context, name string, params ...Variant) (Variant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx = slogctx.NewCtx(ctx, a.logger)

	m, ok := methodIndex[strings.ToLower(name)]
	if !ok {
		a.sink.Report(fmt.Errorf("%w: %s", ErrUnknownMethod, name))
		return Variant{}, false
	}

	result, err := m.call(ctx, a, params)
	a.sink.Report(err)
	if err != nil {
		a.logger.Debug("method failed", "method", m.Name, "error", err)
		return Variant{}, false
	}
	return result, true
}

// GetProperty reads a registered property by case-insensitive name. Reading
// a property does not change LastError unless the name is unknown.
func (a *Addin) GetProperty(name string) (Variant, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := propertyIndex[strings.ToLower(name)]
	if !ok {
		a.sink.Report(fmt.Errorf("%w: %s", ErrUnknownProperty, name))
		return Variant{}, false
	}
	return p.Get(a), true
}

// Err returns the error behind LastError, or nil if the most recent call
// succeeded. Failures from the session match the session sentinels with
// errors.Is.
func (a *Addin) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sink.Err()
}

// Close tears down the instance and its connection. It is not exposed to the
// host as a method.
func (a *Addin) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Close(ctx)
}

func (m Method) call(ctx context.Context, a *Addin, params []Variant) (Variant, error) {
	if len(params) != len(m.Params) {
		return Variant{}, &session.Error{
			Kind: session.ValidationError,
			Op:   m.Name,
			Err:  fmt.Errorf("expected %d parameter(s), got %d", len(m.Params), len(params)),
		}
	}
	for i, want := range m.Params {
		if params[i].Type != want {
			return Variant{}, &session.Error{
				Kind: session.ValidationError,
				Op:   m.Name,
				Err:  fmt.Errorf("parameter %d: %w", i+1, params[i].mismatch(want)),
			}
		}
	}
	return m.Call(ctx, a, params)
}

var (
	methodIndex   = lo.KeyBy(methods, func(m Method) string { return strings.ToLower(m.Name) })
	propertyIndex = lo.KeyBy(properties, func(p Property) string { return strings.ToLower(p.Name) })
)

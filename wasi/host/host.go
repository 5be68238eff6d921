// Package host exposes an addin.Addin to a WebAssembly guest as a set of
// host functions in the "env" module.
//
// Strings are passed in as (pointer, length) pairs. Results that carry bytes
// are written into a buffer the host allocates through the guest's
// alloc_bytes export; the host stores the buffer address at destPtr and
// returns its length, or -1 if the call failed. After a failure the guest
// reads the reason with pg_last_error.
package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

const ModuleName = "env"

// Export names of the host functions.
const (
	FuncConnect       = "pg_connect"
	FuncSimpleQuery   = "pg_simple_query"
	FuncNotifications = "pg_notifications"
	FuncConnected     = "pg_connected"
	FuncLastError     = "pg_last_error"
)

// Bridge binds one addin instance to a wazero runtime.
type Bridge struct {
	addin *addin.Addin
}

func NewBridge(a *addin.Addin) *Bridge {
	return &Bridge{addin: a}
}

// Instantiate registers the host module with the runtime. It must be called
// before the guest module that imports it is instantiated.
func (b *Bridge) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	return r.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().WithFunc(b.connect).Export(FuncConnect).
		NewFunctionBuilder().WithFunc(b.simpleQuery).Export(FuncSimpleQuery).
		NewFunctionBuilder().WithFunc(b.notifications).Export(FuncNotifications).
		NewFunctionBuilder().WithFunc(b.connected).Export(FuncConnected).
		NewFunctionBuilder().WithFunc(b.lastError).Export(FuncLastError).
		Instantiate(ctx)
}

func (b *Bridge) connect(ctx context.Context, m api.Module, dsnOffset, dsnByteCount uint32) int32 {
	dsn := string(readBytes(m, dsnOffset, dsnByteCount))
	if _, ok := b.addin.CallMethod(ctx, "Connect", addin.StringValue(dsn)); !ok {
		return 0
	}
	return 1
}

func (b *Bridge) simpleQuery(ctx context.Context, m api.Module, sqlOffset, sqlByteCount, destPtr uint32) int32 {
	sql := string(readBytes(m, sqlOffset, sqlByteCount))
	result, ok := b.addin.CallMethod(ctx, "SimpleQuery", addin.StringValue(sql))
	if !ok {
		return -1
	}
	return b.writeBlob(ctx, m, result, destPtr)
}

func (b *Bridge) notifications(ctx context.Context, m api.Module, timeoutMillis int32, destPtr uint32) int32 {
	result, ok := b.addin.CallMethod(ctx, "Notifications", addin.Int32Value(timeoutMillis))
	if !ok {
		return -1
	}
	return b.writeBlob(ctx, m, result, destPtr)
}

func (b *Bridge) connected(ctx context.Context, m api.Module) int32 {
	v, _ := b.addin.GetProperty("Connected")
	if connected, _ := v.AsBool(); connected {
		return 1
	}
	return 0
}

func (b *Bridge) lastError(ctx context.Context, m api.Module, destPtr uint32) int32 {
	v, _ := b.addin.GetProperty("LastError")
	msg, _ := v.AsString()
	return writeResult(ctx, m, []byte(msg), destPtr)
}

func (b *Bridge) writeBlob(ctx context.Context, m api.Module, v addin.Variant, destPtr uint32) int32 {
	blob, err := v.AsBlob()
	if err != nil {
		slogctx.FromCtx(ctx).Error("unexpected method result", "error", err)
		return -1
	}
	return writeResult(ctx, m, blob, destPtr)
}

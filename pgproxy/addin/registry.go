package addin

import (
	"context"

	"github.com/samber/lo"
)

// Method describes a callable entry in the registry. Params lists the
// variant type of each positional parameter.
type Method struct {
	Name   string
	Params []VariantType
	Call   func(ctx context.Context, a *Addin, params []Variant) (Variant, error)
}

// Property describes a read-only entry in the registry.
type Property struct {
	Name string
	Get  func(a *Addin) Variant
}

var methods = []Method{
	{
		Name:   "Connect",
		Params: []VariantType{String},
		Call: func(ctx context.Context, a *Addin, params []Variant) (Variant, error) {
			connString, _ := params[0].AsString()
			return Variant{}, a.session.Connect(ctx, connString)
		},
	},
	{
		Name:   "SimpleQuery",
		Params: []VariantType{String},
		Call: func(ctx context.Context, a *Addin, params []Variant) (Variant, error) {
			sql, _ := params[0].AsString()
			out, err := a.session.SimpleQuery(ctx, sql)
			if err != nil {
				return Variant{}, err
			}
			return BlobValue(out), nil
		},
	},
	{
		Name:   "Notifications",
		Params: []VariantType{Int32},
		Call: func(ctx context.Context, a *Addin, params []Variant) (Variant, error) {
			timeout, _ := params[0].AsInt32()
			out, err := a.session.Notifications(ctx, timeout)
			if err != nil {
				return Variant{}, err
			}
			return BlobValue(out), nil
		},
	},
}

var properties = []Property{
	{
		Name: "Connected",
		Get: func(a *Addin) Variant {
			return BoolValue(a.session.Connected())
		},
	},
	{
		Name: "LastError",
		Get: func(a *Addin) Variant {
			return StringValue(a.sink.LastError())
		},
	},
}

// Methods returns the registered method names in declaration order.
func Methods() []string {
	return lo.Map(methods, func(m Method, _ int) string { return m.Name })
}

// Properties returns the registered property names in declaration order.
func Properties() []string {
	return lo.Map(properties, func(p Property, _ int) string { return p.Name })
}

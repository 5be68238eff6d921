package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomyedwab/pgbridge/internal/config"
	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

var dsnFlag = &cli.StringFlag{
	Name:  "dsn",
	Usage: "PostgreSQL connection string (default from PGBRIDGE_DSN or DATABASE_URL)",
}

// loadConfig reads the shared configuration and applies any flags the user
// set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if c.IsSet("dsn") {
		cfg.DSN = c.String("dsn")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Int("timeout")
	}
	if c.IsSet("channel") {
		cfg.Channels = c.StringSlice("channel")
	}
	if c.IsSet("wasm") {
		cfg.Wasm = c.String("wasm")
	}
	return cfg, nil
}

// call invokes a bridge method and returns the error the bridge recorded for
// a failed call. Its text is the bridge's LastError.
func call(ctx context.Context, a *addin.Addin, method string, params ...addin.Variant) (addin.Variant, error) {
	result, ok := a.CallMethod(ctx, method, params...)
	if ok {
		return result, nil
	}
	return addin.Variant{}, a.Err()
}

func connect(ctx context.Context, a *addin.Addin, dsn string) error {
	if dsn == "" {
		return errors.New("a connection string must be specified with --dsn, PGBRIDGE_DSN or DATABASE_URL")
	}
	_, err := call(ctx, a, "Connect", addin.StringValue(dsn))
	return err
}

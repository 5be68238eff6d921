package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
	"github.com/tomyedwab/pgbridge/wasi/host"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a WASI guest module with the bridge host functions",
		ArgsUsage: "[guest args...]",
		Flags: []cli.Flag{
			dsnFlag,
			&cli.StringFlag{Name: "wasm", Usage: "path of the guest module"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if len(cfg.Wasm) == 0 {
				return fmt.Errorf("a guest module must be specified with --wasm")
			}

			wasmBytes, err := os.ReadFile(cfg.Wasm)
			if err != nil {
				return fmt.Errorf("failed to read WASM file %s: %w", cfg.Wasm, err)
			}

			return runGuest(c.Context, wasmBytes, cfg.DSN, c.Args().Slice())
		},
	}
}

// runGuest instantiates a wasip1 command module bound to a fresh bridge
// instance and runs it to completion. The connection string is passed to the
// guest in its PGBRIDGE_DSN environment variable.
func runGuest(ctx context.Context, wasmBytes []byte, dsn string, args []string) (err error) {
	var (
		logger = slogctx.FromCtx(ctx)
		a      = addin.New(ctx)
		r      = wazero.NewRuntime(ctx)
	)

	defer func() {
		var res *multierror.Error
		res = multierror.Append(res, err)
		res = multierror.Append(res, r.Close(ctx))
		res = multierror.Append(res, a.Close(context.Background()))
		err = res.ErrorOrNil()
	}()

	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	if _, err := host.NewBridge(a).Instantiate(ctx, r); err != nil {
		return err
	}

	config := wazero.NewModuleConfig().
		WithArgs(append([]string{"guest"}, args...)...).
		WithEnv("PGBRIDGE_DSN", dsn).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep()

	logger.Debug("starting guest", "instance", a.ID, "bytes", len(wasmBytes))

	_, err = r.InstantiateWithConfig(ctx, wasmBytes, config)
	if err != nil {
		// Most guests exit through proc_exit even on success.
		if exitErr, ok := err.(*sys.ExitError); ok && exitErr.ExitCode() == 0 {
			return nil
		}
		return err
	}
	return nil
}

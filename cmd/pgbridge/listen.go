package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

func listenCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "LISTEN on channels and print notification batches as they arrive",
		Flags: []cli.Flag{
			dsnFlag,
			&cli.StringSliceFlag{Name: "channel", Aliases: []string{"c"}, Usage: "channel to LISTEN on (repeatable)"},
			&cli.IntFlag{Name: "timeout", Value: 1000, Usage: "milliseconds to wait for each batch"},
			&cli.IntFlag{Name: "count", Value: 0, Usage: "stop after this many polls (0 polls until interrupted)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if len(cfg.Channels) == 0 {
				return fmt.Errorf("at least one channel must be specified")
			}
			if cfg.Timeout < 0 || cfg.Timeout > math.MaxInt32 {
				return fmt.Errorf("timeout out of range: %d", cfg.Timeout)
			}

			ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := slogctx.FromCtx(ctx)

			a := addin.New(ctx)
			defer a.Close(context.Background())

			if err := connect(ctx, a, cfg.DSN); err != nil {
				return err
			}
			if _, err := call(ctx, a, "SimpleQuery", addin.StringValue(listenSQL(cfg.Channels))); err != nil {
				return err
			}
			logger.Info("listening", "channels", cfg.Channels, "timeout_ms", cfg.Timeout)

			return poll(ctx, c.App.Writer, c.Int("count"), func(ctx context.Context) ([]byte, error) {
				result, err := call(ctx, a, "Notifications", addin.Int32Value(int32(cfg.Timeout)))
				if err != nil {
					return nil, err
				}
				return result.AsBlob()
			})
		},
	}
}

// poll writes each non-empty notification batch returned by fetch to w. It
// stops after count polls, or never when count is 0, and returns nil once ctx
// is done, including when the cancellation interrupted a fetch.
func poll(ctx context.Context, w io.Writer, count int, fetch func(context.Context) ([]byte, error)) error {
	for i := 0; count == 0 || i < count; i++ {
		if ctx.Err() != nil {
			return nil
		}

		blob, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if string(blob) == "[]" {
			continue
		}
		fmt.Fprintln(w, string(blob))
	}
	return nil
}

// listenSQL builds one LISTEN statement per channel, quoting each name.
func listenSQL(channels []string) string {
	return strings.Join(lo.Map(channels, func(channel string, _ int) string {
		return "LISTEN " + pgx.Identifier{channel}.Sanitize()
	}), "; ")
}

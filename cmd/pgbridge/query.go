package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "run SQL text and print the encoded result",
		ArgsUsage: "SQL",
		Flags:     []cli.Flag{dsnFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			sql := strings.Join(c.Args().Slice(), " ")
			if len(strings.TrimSpace(sql)) == 0 {
				return fmt.Errorf("SQL text must be specified")
			}

			a := addin.New(c.Context)
			defer a.Close(context.Background())

			if err := connect(c.Context, a, cfg.DSN); err != nil {
				return err
			}

			result, err := call(c.Context, a, "SimpleQuery", addin.StringValue(sql))
			if err != nil {
				return err
			}
			blob, err := result.AsBlob()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, string(blob))
			return nil
		},
	}
}

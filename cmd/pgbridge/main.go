package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/agnosticeng/panicsafe"
	"github.com/agnosticeng/slogcli"
	"github.com/urfave/cli/v2"

	"github.com/tomyedwab/pgbridge/pgproxy/addin"
)

func main() {
	app := cli.App{
		Name:        "pgbridge",
		Usage:       "run SQL and receive PostgreSQL notifications through the bridge",
		Description: description(),
		Flags:       slogcli.SlogFlags(),
		Before:      slogcli.SlogBefore,
		Commands: []*cli.Command{
			queryCommand(),
			listenCommand(),
			runCommand(),
		},
	}

	var err = panicsafe.Recover(func() error { return app.Run(os.Args) })

	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}

// description lists the bridge surface available to guests of the run
// command.
func description() string {
	return fmt.Sprintf("Guests started with run can call the methods %s and read the properties %s.",
		strings.Join(addin.Methods(), ", "), strings.Join(addin.Properties(), ", "))
}

//go:build wasip1

// Command listener is a WASI guest that uses the bridge to create a table,
// insert a few rows, and wait for notifications on a channel.
//
//	GOOS=wasip1 GOARCH=wasm go build -o listener.wasm ./example/listener
//	pgbridge run --dsn "host=localhost dbname=app" --wasm listener.wasm jobs
package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/tomyedwab/pgbridge/wasi/guest"
)

func main() {
	name := "jobs"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	if err := guest.Connect(os.Getenv("PGBRIDGE_DSN")); err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	result, err := guest.Query(script(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}
	for _, element := range result {
		fmt.Printf("result: %v\n", element)
	}

	notifications, err := guest.Notifications(1000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifications: %v\n", err)
		os.Exit(1)
	}
	for _, n := range notifications {
		fmt.Printf("notification on %s: %s\n", n.Channel, n.Payload)
	}
}

// script creates and reads back a table, then LISTENs and NOTIFYs on the
// quoted channel so the following Notifications call has something to drain.
func script(name string) string {
	channel := pgx.Identifier{name}.Sanitize()
	return `
		CREATE TEMP TABLE jobs (id serial PRIMARY KEY, name text);
		INSERT INTO jobs (name) VALUES ('build'), ('test');
		SELECT id, name FROM jobs ORDER BY id;
		LISTEN ` + channel + `;
		NOTIFY ` + channel + `, 'hello from the guest'`
}

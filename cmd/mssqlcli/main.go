// mssqlcli — small console client for MS SQL Server.
//
// Usage:
//
//	mssqlcli --ping --conn "server=tcp:localhost;database=master;user id=sa;password=..."
//	mssqlcli --query "SELECT TOP 10 name FROM sys.tables"
//	mssqlcli --exec "DELETE FROM Staging WHERE Loaded = 1"
//
// Flags:
//
//	--conn     ADO-style connection string (default: MSSQL_DB environment variable)
//	--config   YAML pool config; its conn_string is used when --conn is not given
//	--ping     Connect and verify the session, then exit
//	--query    Run a query and print the result set
//	--exec     Run a statement and print the affected-row count
//	--timeout  Per-command timeout (default 30s)
//	--verbose  Enable trace logging
//
// Environment:
//
//	MSSQL_DB  Connection string used when --conn is not given
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/mssqlclient/pkg/client"
	"github.com/ruslano69/mssqlclient/pkg/pool"
	"github.com/ruslano69/mssqlclient/pkg/row"
)

func main() {
	conn := flag.String("conn", "", "ADO-style connection string (default: MSSQL_DB env)")
	configPath := flag.String("config", "", "path to YAML pool config")
	ping := flag.Bool("ping", false, "connect, verify the session and exit")
	query := flag.String("query", "", "run a query and print the result set")
	exec := flag.String("exec", "", "run a statement and print the affected-row count")
	timeout := flag.Duration("timeout", 30*time.Second, "per-command timeout")
	verbose := flag.Bool("verbose", false, "enable trace logging")
	flag.Parse()

	// Pretty console log; switch to JSON via log.Logger = zerolog.New(os.Stderr)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	connString := *conn
	if connString == "" && *configPath != "" {
		cfg, err := pool.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
		}
		connString = cfg.ConnString
	}
	if connString == "" {
		connString = os.Getenv("MSSQL_DB")
	}
	if connString == "" {
		log.Fatal().Msg("no connection string: pass --conn, --config or set MSSQL_DB")
	}

	if !*ping && *query == "" && *exec == "" {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	session, err := client.Connect(ctx, connString)
	if err != nil {
		log.Fatal().Err(err).Msg("connect failed")
	}
	defer session.Close()

	switch {
	case *ping:
		if err := session.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping failed")
		}
		fmt.Printf("ok (%s)\n", time.Since(start).Round(time.Millisecond))

	case *exec != "":
		n, err := session.Execute(ctx, *exec)
		if err != nil {
			log.Fatal().Err(err).Msg("execute failed")
		}
		fmt.Printf("%d row(s) affected\n", n)

	case *query != "":
		if err := printQuery(ctx, session, *query); err != nil {
			log.Fatal().Err(err).Msg("query failed")
		}
	}
}

// printQuery renders the result set as an aligned table on stdout.
func printQuery(ctx context.Context, session *client.Connection, sqlText string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	count := 0
	err := session.QueryRows(ctx, sqlText, nil, func(r *row.Row) error {
		if count == 0 {
			for i, name := range r.Columns() {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprint(w, name)
			}
			fmt.Fprintln(w)
		}
		count++

		for i := 0; i < r.Len(); i++ {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			var cell any
			if err := r.Get(i, &cell); err != nil {
				return err
			}
			fmt.Fprint(w, renderCell(cell))
		}
		fmt.Fprintln(w)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n(%d row(s))\n", count)
	return nil
}

func renderCell(v any) string {
	switch c := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("0x%X", c)
	case time.Time:
		return c.Format(time.RFC3339)
	default:
		return fmt.Sprint(c)
	}
}

// Package client implements the session and command layers of the MS SQL
// Server client.
//
// A Connection is one dedicated session: one outstanding command at a time,
// no pipelining, no automatic reconnect. Transactions borrow the Connection
// exclusively and hand it back on Commit/Rollback.
//
// Features:
//   - Connect via ADO-style connection strings (see pkg/connstr)
//   - Execute / Query / QueryMap / QueryFold / QueryScalar / QueryColumn
//   - Named placeholders (@name) via ExecNamed / QueryNamed
//   - Typed error taxonomy: HandshakeError, AuthenticationError,
//     ConnectionLostError, ServerError, ErrConnectionClosed
//   - Rollback-on-close transactions (fail-safe default)
//
// Usage:
//
//	import (
//	    "context"
//
//	    "github.com/ruslano69/mssqlclient/pkg/client"
//	    "github.com/ruslano69/mssqlclient/pkg/params"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    conn, err := client.Connect(ctx,
//	        `server=tcp:localhost\SQL2017;database=master;integratedsecurity=sspi;trustservercertificate=true`)
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer conn.Close()
//
//	    _, err = client.ExecNamed(ctx, conn,
//	        "INSERT #Temp (Id, Name) VALUES (@id, @name);",
//	        params.Named{"id": 54, "name": "Foo"})
//
//	    n, err := client.QueryScalar[int32](ctx, conn, "SELECT @p1 + 2", 10)
//	    // n == 12
//	}
//
// Error policy: every failure surfaces as a typed error, nothing is retried.
// A session that loses its network link moves to Closed and stays there;
// subsequent commands fail with ErrConnectionClosed.
package client

package client

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/mssqlclient/pkg/connstr"
	"github.com/ruslano69/mssqlclient/pkg/row"
	"github.com/ruslano69/mssqlclient/pkg/sqlvalue"
)

// Connection owns one dedicated session to the server. A session processes
// exactly one command at a time; concurrent callers serialize on the
// internal lock. While a Transaction is open the Connection rejects direct
// commands with ErrTransactionActive.
//
// Any transport failure moves the session to Closed permanently; the caller
// must establish a new Connection.
type Connection struct {
	mu    sync.Mutex
	db    *sql.DB
	conn  *sql.Conn
	state State
}

// Connect establishes a session using an ADO-style connection string
// ("server=...;database=...;user id=...;..."). The data source host is
// resolved to an IP before dialing (see pkg/connstr).
func Connect(ctx context.Context, connectionString string) (*Connection, error) {
	dsn, err := connstr.Adjust(connectionString)
	if err != nil {
		return nil, err
	}
	return OpenDriver(ctx, "mssql", dsn)
}

// FromEnv establishes a session using the connection string stored in the
// given environment variable.
func FromEnv(ctx context.Context, key string) (*Connection, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil, fmt.Errorf("client: environment variable %q is not set", key)
	}
	return Connect(ctx, v)
}

// OpenDriver establishes a session over an arbitrary database/sql driver.
// The normal entry point is Connect; OpenDriver exists for callers that
// manage their own DSN and for tests running against other engines.
func OpenDriver(ctx context.Context, driverName, dsn string) (*Connection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &HandshakeError{Err: err}
	}
	conn, err := OpenDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return conn, nil
}

// OpenDB pins one session out of db and takes ownership of the handle:
// closing the Connection closes db.
func OpenDB(ctx context.Context, db *sql.DB) (*Connection, error) {
	// The handle backs exactly one session.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	start := time.Now()
	log.Trace().Msg("connecting")

	sc, err := db.Conn(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	if err := sc.PingContext(ctx); err != nil {
		sc.Close()
		return nil, connectError(err)
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("connected")

	return &Connection{db: db, conn: sc, state: StateReady}, nil
}

// connectError classifies a failure during session establishment: login
// rejections surface as AuthenticationError, everything else (TCP, TLS,
// pre-login) as HandshakeError.
func connectError(err error) error {
	classified := classify(err)
	switch classified.(type) {
	case *AuthenticationError, *ServerError:
		return classified
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	return &HandshakeError{Err: err}
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ping verifies the session is alive. A failed ping closes the session.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.conn.PingContext(ctx); err != nil {
		return c.fail(err)
	}
	return nil
}

// Execute runs a statement that returns no rows and reports the number of
// affected rows.
func (c *Connection) Execute(ctx context.Context, sqlText string, args ...any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return 0, err
	}
	return runExec(ctx, c.conn, c.fail, sqlText, args)
}

// QueryRows executes a query and calls fn once per decoded row, in order.
// fn may return ErrStop to end iteration early. Rows not yet visited when
// an error occurs are discarded; re-iteration requires re-execution.
func (c *Connection) QueryRows(ctx context.Context, sqlText string, args []any, fn func(*row.Row) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return err
	}
	return runQuery(ctx, c.conn, c.fail, sqlText, args, fn)
}

// Begin opens a transaction. The Connection is held exclusively by the
// returned Transaction until Commit, Rollback or Close.
func (c *Connection) Begin(ctx context.Context) (*Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready(); err != nil {
		return nil, err
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, c.fail(err)
	}

	c.state = StateInTransaction
	log.Trace().Msg("transaction started")

	return &Transaction{conn: c, tx: tx}, nil
}

// Close terminates the session. Closing is idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed

	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	if c.db != nil {
		if dbErr := c.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

// ready reports whether the session can accept a command right now.
func (c *Connection) ready() error {
	switch c.state {
	case StateReady:
		return nil
	case StateInTransaction:
		return ErrTransactionActive
	default:
		return ErrConnectionClosed
	}
}

// fail classifies a command failure. A lost transport closes the session.
// Callers must hold c.mu.
func (c *Connection) fail(err error) error {
	classified := classify(err)
	if _, lost := classified.(*ConnectionLostError); lost {
		log.Debug().Err(err).Msg("transport failure, closing session")
		_ = c.closeLocked()
	}
	return classified
}

// noteError is the transaction-path counterpart of fail; it takes the lock
// itself because Transaction commands run without holding c.mu.
func (c *Connection) noteError(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fail(err)
}

// endTx returns the session to Ready after a transaction is disposed.
func (c *Connection) endTx() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateInTransaction {
		c.state = StateReady
	}
}

// executor abstracts the two command targets: a pinned sql.Conn and an open
// sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func encodeArgs(args []any) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		enc, err := sqlvalue.Encode(a)
		if err != nil {
			return nil, fmt.Errorf("client: parameter %d: %w", i+1, err)
		}
		out[i] = enc
	}
	return out, nil
}

func runExec(ctx context.Context, ex executor, onErr func(error) error, sqlText string, args []any) (int64, error) {
	encoded, err := encodeArgs(args)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	res, err := ex.ExecContext(ctx, sqlText, encoded...)
	if err != nil {
		return 0, onErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// Driver cannot report a count; the statement still succeeded.
		affected = 0
	}

	log.Trace().Dur("elapsed", time.Since(start)).Int64("rows_affected", affected).Msg("execute completed")
	return affected, nil
}

func runQuery(ctx context.Context, ex executor, onErr func(error) error, sqlText string, args []any, fn func(*row.Row) error) error {
	encoded, err := encodeArgs(args)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := ex.QueryContext(ctx, sqlText, encoded...)
	if err != nil {
		return onErr(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return onErr(err)
	}

	count := 0
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return onErr(err)
		}

		count++
		if err := fn(row.New(cols, cells)); err != nil {
			if err == ErrStop {
				break
			}
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return onErr(err)
	}

	log.Trace().Dur("elapsed", time.Since(start)).Int("rows", count).Msg("query completed")
	return nil
}

package client

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/mssqlclient/pkg/row"
)

// Transaction is a unit of work holding its Connection exclusively. Commit
// and Rollback are terminal: they dispose the transaction and hand the
// Connection back for reuse. Close on an undisposed transaction rolls back,
// so `defer tx.Close()` is the fail-safe pattern:
//
//	tx, err := conn.Begin(ctx)
//	if err != nil { ... }
//	defer tx.Close()
//	// ... commands ...
//	conn, err = tx.Commit(ctx)
type Transaction struct {
	mu   sync.Mutex
	conn *Connection
	tx   *sql.Tx
	done bool
}

// Execute runs a statement inside the transaction.
func (t *Transaction) Execute(ctx context.Context, sqlText string, args ...any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return 0, ErrTransactionDone
	}
	return runExec(ctx, t.tx, t.conn.noteError, sqlText, args)
}

// QueryRows executes a query inside the transaction; see
// Connection.QueryRows for iteration semantics.
func (t *Transaction) QueryRows(ctx context.Context, sqlText string, args []any, fn func(*row.Row) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	return runQuery(ctx, t.tx, t.conn.noteError, sqlText, args, fn)
}

// Commit makes the transaction's changes durable and returns the owning
// Connection for reuse.
func (t *Transaction) Commit(ctx context.Context) (*Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil, ErrTransactionDone
	}
	t.done = true

	start := time.Now()
	if err := t.tx.Commit(); err != nil {
		t.conn.endTx()
		return nil, t.conn.noteError(err)
	}
	t.conn.endTx()

	log.Trace().Dur("elapsed", time.Since(start)).Msg("transaction committed")
	return t.conn, nil
}

// Rollback discards the transaction's changes and returns the owning
// Connection for reuse.
func (t *Transaction) Rollback(ctx context.Context) (*Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn, err := t.rollbackLocked()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close rolls the transaction back unless it was already committed or
// rolled back. Safe to defer unconditionally.
func (t *Transaction) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	log.Debug().Msg("transaction dropped without commit, rolling back")
	_, err := t.rollbackLocked()
	return err
}

func (t *Transaction) rollbackLocked() (*Connection, error) {
	if t.done {
		return nil, ErrTransactionDone
	}
	t.done = true

	if err := t.tx.Rollback(); err != nil {
		t.conn.endTx()
		return nil, t.conn.noteError(err)
	}
	t.conn.endTx()

	log.Trace().Msg("transaction rolled back")
	return t.conn, nil
}

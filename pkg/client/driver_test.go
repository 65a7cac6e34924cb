package client

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
)

// In-memory driver harness: tests run commands against handler functions
// instead of a live server.

type execHandler func(query string, args []driver.NamedValue) (driver.Result, error)
type queryHandler func(query string, args []driver.NamedValue) (cols []string, data [][]driver.Value, err error)

type fakeHandler struct {
	exec    execHandler
	query   queryHandler
	connErr error // returned from Connect when set
}

type fakeConnector struct {
	h    *fakeHandler
	conn *fakeConn // last connection handed out
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	if c.h.connErr != nil {
		return nil, c.h.connErr
	}
	c.conn = &fakeConn{h: c.h}
	return c.conn, nil
}

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("use sql.OpenDB with the connector")
}

type fakeConn struct {
	h  *fakeHandler
	tx *fakeTx // open transaction, if any
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported by fake driver")
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Ping(context.Context) error {
	if c.h.connErr != nil {
		return c.h.connErr
	}
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	c.tx = &fakeTx{}
	return c.tx, nil
}

func (c *fakeConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return c.Begin()
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if c.h.exec == nil {
		return driver.RowsAffected(0), nil
	}
	return c.h.exec(query, args)
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.h.query == nil {
		return nil, errors.New("no query handler installed")
	}
	cols, data, err := c.h.query(query, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{cols: cols, data: data}, nil
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack = true; return nil }

type fakeRows struct {
	cols []string
	data [][]driver.Value
	i    int
}

func (r *fakeRows) Columns() []string { return append([]string(nil), r.cols...) }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.data) {
		return io.EOF
	}
	for i := range dest {
		if i < len(r.data[r.i]) {
			dest[i] = r.data[r.i][i]
		} else {
			dest[i] = nil
		}
	}
	r.i++
	return nil
}

// newFakeConnection opens a Connection over the fake driver.
func newFakeConnection(t *testing.T, h *fakeHandler) (*Connection, *fakeConnector) {
	t.Helper()
	connector := &fakeConnector{h: h}
	conn, err := OpenDB(context.Background(), sql.OpenDB(connector))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, connector
}

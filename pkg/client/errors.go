package client

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	mssql "github.com/denisenkom/go-mssqldb"
)

var (
	// ErrConnectionClosed is returned for any operation on a session in the
	// Closed state. A closed session never reconnects; obtain a new one.
	ErrConnectionClosed = errors.New("client: connection is closed")

	// ErrTransactionActive is returned when a command is issued directly on
	// a Connection while a Transaction holds it.
	ErrTransactionActive = errors.New("client: a transaction holds this connection; use the transaction")

	// ErrTransactionDone is returned when Commit or Rollback is called on an
	// already disposed transaction.
	ErrTransactionDone = errors.New("client: transaction already committed or rolled back")

	// ErrNoRows is returned by scalar queries over an empty result set.
	ErrNoRows = errors.New("client: no rows in result set")

	// ErrStop may be returned from a QueryRows callback to stop iteration
	// early without reporting an error.
	ErrStop = errors.New("client: stop iteration")
)

// HandshakeError reports a failure to establish the session before
// authentication completed (TCP connect, pre-login, TLS negotiation).
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("client: handshake failed: %v", e.Err) }
func (e *HandshakeError) Unwrap() error { return e.Err }

// AuthenticationError reports a login rejected by the server.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("client: authentication failed: %v", e.Err)
}
func (e *AuthenticationError) Unwrap() error { return e.Err }

// ConnectionLostError reports a network failure mid-exchange. The session is
// moved to Closed; the command is never retried automatically.
type ConnectionLostError struct {
	Err error
}

func (e *ConnectionLostError) Error() string {
	return fmt.Sprintf("client: connection lost: %v", e.Err)
}
func (e *ConnectionLostError) Unwrap() error { return e.Err }

// ServerError carries an error token returned by the server.
type ServerError struct {
	Number  int32
	State   uint8
	Class   uint8
	Message string
	Proc    string
	Line    int32
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("client: server error %d (severity %d, state %d): %s",
		e.Number, e.Class, e.State, e.Message)
}

// Login failure numbers that map to AuthenticationError rather than a plain
// server error.
func isLoginFailure(number int32) bool {
	switch number {
	case 18456, // login failed for user
		18452, // untrusted domain
		18461, // admin-only mode
		4060: // cannot open database
		return true
	}
	return false
}

// classify maps driver-level failures to the typed error taxonomy. Server
// error tokens become *ServerError (or *AuthenticationError for login
// failures); transport failures become *ConnectionLostError.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var me mssql.Error
	if errors.As(err, &me) {
		if isLoginFailure(me.Number) {
			return &AuthenticationError{Err: err}
		}
		return &ServerError{
			Number:  me.Number,
			State:   me.State,
			Class:   me.Class,
			Message: me.Message,
			Proc:    me.ProcName,
			Line:    me.LineNo,
		}
	}

	if isTransportError(err) {
		return &ConnectionLostError{Err: err}
	}

	return err
}

func isTransportError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

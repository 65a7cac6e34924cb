package client

import (
	"context"

	"github.com/ruslano69/mssqlclient/pkg/params"
	"github.com/ruslano69/mssqlclient/pkg/row"
)

// Command is the executable surface shared by Connection and Transaction.
type Command interface {
	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, sqlText string, args ...any) (int64, error)

	// QueryRows executes a query and visits each decoded row once.
	QueryRows(ctx context.Context, sqlText string, args []any, fn func(*row.Row) error) error
}

var (
	_ Command = (*Connection)(nil)
	_ Command = (*Transaction)(nil)
)

// Query executes sqlText and decodes every row into a T via its Scanner
// implementation.
//
//	accounts, err := client.Query[account](ctx, conn,
//	    "SELECT Id, Name FROM Account WHERE Tenant = @p1", tenant)
func Query[T any, P interface {
	*T
	row.Scanner
}](ctx context.Context, cmd Command, sqlText string, args ...any) ([]T, error) {
	var out []T
	err := cmd.QueryRows(ctx, sqlText, args, func(r *row.Row) error {
		var v T
		if err := P(&v).ScanRow(r); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryMap executes sqlText and transforms each row with fn.
func QueryMap[T any](ctx context.Context, cmd Command, sqlText string, fn func(*row.Row) (T, error), args ...any) ([]T, error) {
	var out []T
	err := cmd.QueryRows(ctx, sqlText, args, func(r *row.Row) error {
		v, err := fn(r)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryFold executes sqlText and folds the rows into a single accumulator.
func QueryFold[T any](ctx context.Context, cmd Command, sqlText string, init T, fn func(T, *row.Row) (T, error), args ...any) (T, error) {
	acc := init
	err := cmd.QueryRows(ctx, sqlText, args, func(r *row.Row) error {
		var ferr error
		acc, ferr = fn(acc, r)
		return ferr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return acc, nil
}

// QueryColumn executes sqlText and decodes the first column of every row.
func QueryColumn[T any](ctx context.Context, cmd Command, sqlText string, args ...any) ([]T, error) {
	return QueryMap(ctx, cmd, sqlText, row.Value[T], args...)
}

// QueryScalar executes sqlText and decodes the first column of the first
// row; an empty result set yields ErrNoRows.
func QueryScalar[T any](ctx context.Context, cmd Command, sqlText string, args ...any) (T, error) {
	var v T
	found := false
	err := cmd.QueryRows(ctx, sqlText, args, func(r *row.Row) error {
		if err := r.Get(0, &v); err != nil {
			return err
		}
		found = true
		return ErrStop
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if !found {
		var zero T
		return zero, ErrNoRows
	}
	return v, nil
}

// ExecNamed executes a statement written with @name placeholders.
//
//	n, err := client.ExecNamed(ctx, conn,
//	    "INSERT Account (Id, Name) VALUES (@id, @name)",
//	    params.Named{"id": 54, "name": "Foo"})
func ExecNamed(ctx context.Context, cmd Command, sqlText string, values params.Named) (int64, error) {
	bound, ps, err := params.BindNamed(sqlText, values)
	if err != nil {
		return 0, err
	}
	return cmd.Execute(ctx, bound, parameterValues(ps)...)
}

// QueryNamed executes a query written with @name placeholders and decodes
// rows into T, like Query.
func QueryNamed[T any, P interface {
	*T
	row.Scanner
}](ctx context.Context, cmd Command, sqlText string, values params.Named) ([]T, error) {
	bound, ps, err := params.BindNamed(sqlText, values)
	if err != nil {
		return nil, err
	}
	return Query[T, P](ctx, cmd, bound, parameterValues(ps)...)
}

func parameterValues(ps []params.Parameter) []any {
	out := make([]any, len(ps))
	for i, p := range ps {
		out[i] = p.Value
	}
	return out
}

// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"chatdb/cli/internal/dsn"
	"chatdb/cli/internal/logging"
)

// postgresAdapter runs every statement on one pgx connection. pgx's Query
// accepts any statement, so rows vs affected-count is decided from the
// returned field descriptions rather than the SQL text.
type postgresAdapter struct {
	conn *pgx.Conn
}

func connectPostgres(ctx context.Context, connString string) (Adapter, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return &postgresAdapter{conn: conn}, nil
}

func (p *postgresAdapter) Driver() dsn.Driver { return dsn.DriverPostgres }

func (p *postgresAdapter) Execute(ctx context.Context, query string) (*Result, error) {
	logging.Debugf("postgres execute: %s", query)

	rows, err := p.conn.Query(ctx, query)
	if err != nil {
		return nil, wrapPgError(err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	if len(fds) == 0 {
		// Statement produces no row set; drain to get the command tag.
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, wrapPgError(err)
		}
		return &Result{RowsAffected: rows.CommandTag().RowsAffected()}, nil
	}

	out := &Result{HasRows: true, Columns: make([]string, len(fds))}
	for i, fd := range fds {
		out.Columns[i] = string(fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, wrapPgError(err)
		}
		for i := range vals {
			vals[i] = normalizeValue(vals[i])
		}
		out.Rows = append(out.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError(err)
	}
	return out, nil
}

func (p *postgresAdapter) Commit(ctx context.Context) error {
	_, err := p.conn.Exec(ctx, "COMMIT")
	return wrapPgError(err)
}

func (p *postgresAdapter) Rollback(ctx context.Context) error {
	_, err := p.conn.Exec(ctx, "ROLLBACK")
	return wrapPgError(err)
}

func (p *postgresAdapter) Ping(ctx context.Context) error {
	return wrapPgError(p.conn.Ping(ctx))
}

func (p *postgresAdapter) Close() error {
	return p.conn.Close(context.Background())
}

// wrapPgError converts pgx errors into *QueryError carrying the SQLSTATE.
func wrapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{
			Message: pgErr.Message,
			Code:    pgErr.Code,
			Err:     err,
		}
	}
	return &QueryError{Message: err.Error(), Err: err}
}

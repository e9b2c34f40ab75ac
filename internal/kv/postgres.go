// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package kv

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// pgQuerier abstracts the pgxpool methods Postgres uses so unit tests
// can substitute pgxmock without a database.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Backend over a single kv_entries table.
type Postgres struct {
	db    pgQuerier
	close func()
}

// NewPostgres connects to dsn with fibonacci backoff and returns a
// Postgres backend. The caller should run Migrator.Up first.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	var pool *pgxpool.Pool
	backoff := retry.WithMaxDuration(30*time.Second, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.In("kv").
			Code("DB_CONNECT_FAILED").
			With("operation", "connect to database").
			Wrap(err)
	}
	return &Postgres{db: pool, close: pool.Close}, nil
}

// NewPostgresWithQuerier builds a backend over an existing querier.
// Used by tests with pgxmock.
func NewPostgresWithQuerier(db pgQuerier) *Postgres {
	return &Postgres{db: db, close: func() {}}
}

// Get implements Backend.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, oops.In("kv").
			Code("STORAGE_READ_FAILED").
			With("key", key).
			Wrap(err)
	}
	return value, true, nil
}

// Put implements Backend.
func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			return oops.In("kv").
				Code("STORAGE_WRITE_FAILED").
				With("key", key).
				Hint("run migrations before writing").
				Wrap(err)
		}
		return oops.In("kv").
			Code("STORAGE_WRITE_FAILED").
			With("key", key).
			Wrap(err)
	}
	return nil
}

// Delete implements Backend.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return oops.In("kv").
			Code("STORAGE_WRITE_FAILED").
			With("key", key).
			Wrap(err)
	}
	return nil
}

// Close implements Backend.
func (p *Postgres) Close() error {
	p.close()
	return nil
}

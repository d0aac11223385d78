// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by [*pgxpool.Pool], [*pgx.Conn] and [pgx.Tx].
//
// Repositories take a DBTX instead of a pool so that a caller can decide
// whether a group of statements runs on its own or inside one transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is anything that can open a transaction (pool or connection).
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Database is a pool-like handle: it runs queries directly and opens transactions.
type Database interface {
	DBTX
	TxBeginner
}

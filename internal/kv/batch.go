package kv

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gophdash/internal/dbx"
)

// BatchDeleter removes several keys as one all-or-nothing step.
type BatchDeleter interface {
	DeleteKeys(ctx context.Context, keys ...string) error
}

// DeleteKeys removes keys from repo. Backends implementing BatchDeleter get
// one atomic attempt; if that fails, or the backend has no batch support,
// every key is deleted on its own and the failures are joined.
func DeleteKeys(ctx context.Context, repo Repository, keys ...string) error {
	if s, ok := repo.(*Store); ok {
		repo = s.Repository
	}

	if bd, ok := repo.(BatchDeleter); ok {
		if err := bd.DeleteKeys(ctx, keys...); err == nil {
			return nil
		}
	}

	var errs []error
	for _, key := range keys {
		if err := repo.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withTx runs fn in a transaction when db is a connection pool, and directly
// on db when it already is a transaction.
func withTx(ctx context.Context, db dbx.DBTX, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if conn, ok := db.(*sql.DB); ok {
		return dbx.WithTx(ctx, conn, nil, fn)
	}
	return fn(ctx, db)
}

// Package store is the durable credential store: a single SQLite file holding
// accounts and their secrets, with foreign keys enforced and the schema
// managed by goose migrations.
//
// Each public method commits before returning. Multi-row operations
// (DeleteAccount, ReplaceAll) run in one transaction and either fully apply
// or leave the store untouched.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/filex"
	"github.com/dmitrijs2005/credvault/internal/migrations"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/accounts"
	"github.com/dmitrijs2005/credvault/internal/repositories/secrets"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store owns the database handle and vends repositories bound to it.
type Store struct {
	db *sql.DB
}

// DSN builds a modernc sqlite DSN for path with foreign keys and a busy
// timeout enabled on every connection.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens (creating if needed) the database file at path and migrates it
// to the latest schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := filex.EnsureParent(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer; also keeps pragmas on the one live connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// RunMigrations applies the embedded SQLite migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, migrations.SQLiteDir)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the database handle, mainly for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Accounts returns an accounts repository bound to db, which may be the
// store's database or a transaction handle from WithTx.
func (s *Store) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

// Secrets returns a secrets repository bound to db.
func (s *Store) Secrets(db dbx.DBTX) secrets.Repository {
	return secrets.NewSQLiteRepository(db)
}

// Conn returns the store's handle for non-transactional repository use.
func (s *Store) Conn() dbx.DBTX {
	return s.db
}

// WithTx runs fn in a transaction on the store.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// DeleteAccount removes username and every secret it owns in one
// transaction. It returns common.ErrNotFound if the account does not exist.
func (s *Store) DeleteAccount(ctx context.Context, username string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.Secrets(tx).DeleteByOwner(ctx, username); err != nil {
			return err
		}
		return s.Accounts(tx).Delete(ctx, username)
	})
}

// Snapshot reads every account and secret in a single read transaction.
func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Snapshot, error) {
		accs, err := s.Accounts(tx).List(ctx)
		if err != nil {
			return nil, err
		}
		secs, err := s.Secrets(tx).List(ctx)
		if err != nil {
			return nil, err
		}
		if accs == nil {
			accs = []models.Account{}
		}
		if secs == nil {
			secs = []models.Secret{}
		}
		return &models.Snapshot{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
			Accounts:  accs,
			Secrets:   secs,
		}, nil
	})
}

// ReplaceAll wipes every account and secret and loads snap in their place,
// keeping secret ids. The snapshot is validated first; an invalid snapshot
// leaves the store untouched and yields an error matching
// common.ErrCorruptRecord.
func (s *Store) ReplaceAll(ctx context.Context, snap *models.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	return s.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		accRepo, secRepo := s.Accounts(tx), s.Secrets(tx)

		if err := secRepo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := accRepo.DeleteAll(ctx); err != nil {
			return err
		}

		for i := range snap.Accounts {
			if err := accRepo.Create(ctx, &snap.Accounts[i]); err != nil {
				return fmt.Errorf("restore account %s: %w", snap.Accounts[i].Username, err)
			}
		}
		for i := range snap.Secrets {
			if err := secRepo.Import(ctx, &snap.Secrets[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

package accounts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "accounts.db") + "?_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE accounts (
  username TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  security_question TEXT NOT NULL,
  security_answer TEXT NOT NULL
);
CREATE TABLE secrets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  owner TEXT NOT NULL REFERENCES accounts(username) ON DELETE CASCADE,
  platform TEXT NOT NULL,
  platform_username TEXT NOT NULL,
  email TEXT NOT NULL,
  secret_ciphertext TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func account(name string) *models.Account {
	return &models.Account{Username: name, PasswordHash: "h-" + name, SecurityQuestion: "q-" + name, SecurityAnswer: "a-" + name}
}

func TestCreate_AndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, account("alice")))

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, account("alice"), got)

	_, err = r.GetByUsername(ctx, "bob")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreate_DuplicateKeepsExistingRow(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, account("alice")))

	dup := &models.Account{Username: "alice", PasswordHash: "other", SecurityQuestion: "x", SecurityAnswer: "y"}
	require.ErrorIs(t, r.Create(ctx, dup), common.ErrDuplicateUser)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h-alice", got.PasswordHash)
}

func TestUpdatePasswordHash(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, account("alice")))

	require.NoError(t, r.UpdatePasswordHash(ctx, "alice", "new-hash"))
	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	require.ErrorIs(t, r.UpdatePasswordHash(ctx, "nobody", "x"), common.ErrNotFound)
}

func TestDelete_CascadesToSecrets(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, account("alice")))
	require.NoError(t, r.Create(ctx, account("bob")))
	_, err := db.Exec(`INSERT INTO secrets(owner, platform, platform_username, email, secret_ciphertext) VALUES
		('alice', 'github', 'a', 'a@x', 'c1'),
		('alice', 'gitlab', 'a', 'a@x', 'c2'),
		('bob', 'github', 'b', 'b@x', 'c3')`)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "alice"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM secrets WHERE owner = 'alice'`).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM secrets`).Scan(&n))
	assert.Equal(t, 1, n)

	require.ErrorIs(t, r.Delete(ctx, "alice"), common.ErrNotFound)
}

func TestList_AndDeleteAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for _, n := range []string{"carol", "alice", "bob"} {
		require.NoError(t, r.Create(ctx, account(n)))
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{list[0].Username, list[1].Username, list[2].Username})

	require.NoError(t, r.DeleteAll(ctx))
	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

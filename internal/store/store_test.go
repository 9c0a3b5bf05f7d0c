package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []string{"alice", "bob"} {
		require.NoError(t, s.Accounts(s.Conn()).Create(ctx, &models.Account{
			Username: u, PasswordHash: "hash-" + u, SecurityQuestion: "q-" + u, SecurityAnswer: "a-" + u,
		}))
	}
	for _, sec := range []models.Secret{
		{Owner: "alice", Platform: "github", PlatformUsername: "al", Email: "al@x", Ciphertext: "c1"},
		{Owner: "alice", Platform: "mail", PlatformUsername: "al", Email: "al@x", Ciphertext: "c2"},
		{Owner: "bob", Platform: "github", PlatformUsername: "bo", Email: "bo@x", Ciphertext: "c3"},
	} {
		_, err := s.Secrets(s.Conn()).Create(ctx, &sec)
		require.NoError(t, err)
	}
}

func TestOpen_MigratesAndEnablesForeignKeys(t *testing.T) {
	s := openTestStore(t)

	var fk int
	require.NoError(t, s.DB().QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"accounts", "secrets", "goose_db_version"} {
		var n int
		require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n))
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "vault.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	seed(t, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	accs, err := s.Accounts(s.Conn()).List(ctx)
	require.NoError(t, err)
	assert.Len(t, accs, 2)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteAccount(ctx, "alice"))

	got, err := s.Secrets(s.Conn()).ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Secrets(s.Conn()).ListByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.ErrorIs(t, s.DeleteAccount(ctx, "alice"), common.ErrNotFound)
}

func TestSnapshotReplaceAll_RoundTrip(t *testing.T) {
	src := openTestStore(t)
	seed(t, src)
	ctx := context.Background()

	// make ids non-contiguous
	require.NoError(t, src.Secrets(src.Conn()).Delete(ctx, "alice", 1))

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	require.Len(t, snap.Accounts, 2)
	require.Len(t, snap.Secrets, 2)

	dst := openTestStore(t)
	require.NoError(t, dst.Accounts(dst.Conn()).Create(ctx, &models.Account{
		Username: "stale", PasswordHash: "h", SecurityQuestion: "q", SecurityAnswer: "a",
	}))

	require.NoError(t, dst.ReplaceAll(ctx, snap))

	got, err := dst.Snapshot(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(snap.Accounts, got.Accounts); diff != "" {
		t.Fatalf("accounts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(snap.Secrets, got.Secrets); diff != "" {
		t.Fatalf("secrets mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(2), got.Secrets[0].ID)
}

func TestReplaceAll_InvalidSnapshotLeavesStoreUntouched(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	before, err := s.Snapshot(ctx)
	require.NoError(t, err)

	bad := &models.Snapshot{
		Accounts: []models.Account{{Username: "x", PasswordHash: "h", SecurityQuestion: "q", SecurityAnswer: "a"}},
		Secrets:  []models.Secret{{ID: 1, Owner: "ghost", Platform: "p", Ciphertext: "c"}},
	}
	require.ErrorIs(t, s.ReplaceAll(ctx, bad), common.ErrCorruptRecord)

	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Accounts, after.Accounts)
	assert.Equal(t, before.Secrets, after.Secrets)
}

func TestSnapshot_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Accounts)
	assert.NotNil(t, snap.Secrets)
	assert.Empty(t, snap.Accounts)
}

package transfer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestWriteAccounts_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, []models.Account{
		{Username: "alice", PasswordHash: "h", SecurityQuestion: "q,with comma", SecurityAnswer: "a"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "username,password_hash,security_question,security_answer", lines[0])
	assert.Equal(t, `alice,h,"q,with comma",a`, lines[1])
}

func TestWriteReadSecrets(t *testing.T) {
	in := []models.Secret{
		{ID: 7, Owner: "alice", Platform: "github", PlatformUsername: "al", Email: "al@x", Ciphertext: "AQ=="},
		{ID: 9, Owner: "alice", Platform: "mail", PlatformUsername: "", Email: "", Ciphertext: "Ag=="},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSecrets(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "id,owner,platform,platform_username,email,secret_ciphertext\n"))

	out, err := ReadSecrets(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("secrets mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name string
		read func(string) error
		data string
	}{
		{"empty accounts", readAccounts, ""},
		{"wrong accounts header", readAccounts, "user,password_hash,security_question,security_answer\n"},
		{"reordered header", readAccounts, "password_hash,username,security_question,security_answer\n"},
		{"short account row", readAccounts, "username,password_hash,security_question,security_answer\nalice,h,q\n"},
		{"bad secret id", readSecrets, "id,owner,platform,platform_username,email,secret_ciphertext\nx,alice,p,u,e,c\n"},
		{"zero secret id", readSecrets, "id,owner,platform,platform_username,email,secret_ciphertext\n0,alice,p,u,e,c\n"},
		{"long secret row", readSecrets, "id,owner,platform,platform_username,email,secret_ciphertext\n1,alice,p,u,e,c,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.read(tt.data), common.ErrCorruptRecord)
		})
	}
}

func readAccounts(s string) error {
	_, err := ReadAccounts(strings.NewReader(s))
	return err
}

func readSecrets(s string) error {
	_, err := ReadSecrets(strings.NewReader(s))
	return err
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)

	require.NoError(t, src.Accounts(src.Conn()).Create(ctx, &models.Account{
		Username: "alice", PasswordHash: "h", SecurityQuestion: "q", SecurityAnswer: "a",
	}))
	for _, p := range []string{"github", "mail", "bank"} {
		_, err := src.Secrets(src.Conn()).Create(ctx, &models.Secret{
			Owner: "alice", Platform: p, PlatformUsername: "al", Email: "al@x", Ciphertext: "ct-" + p,
		})
		require.NoError(t, err)
	}
	require.NoError(t, src.Secrets(src.Conn()).Delete(ctx, "alice", 1))

	dir := filepath.Join(t.TempDir(), "export")
	require.NoError(t, Export(ctx, src, dir))

	fi, err := os.Stat(filepath.Join(dir, SecretsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	dst := openStore(t)
	require.NoError(t, Import(ctx, dst, dir))

	want, err := src.Snapshot(ctx)
	require.NoError(t, err)
	got, err := dst.Snapshot(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want.Accounts, got.Accounts); diff != "" {
		t.Fatalf("accounts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Secrets, got.Secrets); diff != "" {
		t.Fatalf("secrets mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_BadFileLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.Accounts(st.Conn()).Create(ctx, &models.Account{
		Username: "alice", PasswordHash: "h", SecurityQuestion: "q", SecurityAnswer: "a",
	}))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AccountsFile),
		[]byte("username,password_hash,security_question,security_answer\nbob,h,q,a\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SecretsFile),
		[]byte("id,owner,platform\n1,bob,p\n"), 0o600))

	require.ErrorIs(t, Import(ctx, st, dir), common.ErrCorruptRecord)

	accs, err := st.Accounts(st.Conn()).List(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "alice", accs[0].Username)

	require.Error(t, Import(ctx, st, filepath.Join(dir, "missing")))
}

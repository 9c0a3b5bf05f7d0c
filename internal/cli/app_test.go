package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/backup"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/remote"
	"github.com/dmitrijs2005/credvault/internal/services"
	"github.com/dmitrijs2005/credvault/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store   *store.Store
	session *services.Session
	sync    *backup.Synchronizer
	remote  *remote.MemoryStore
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	old := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = old })

	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := cryptox.NewCipher(cryptox.GenerateKey())
	require.NoError(t, err)

	rs := remote.NewMemoryStore()
	return &harness{
		store:   st,
		session: services.NewSession(services.NewVault(st, c, cryptox.SHA256Hasher{}, nil)),
		sync:    backup.New(st, rs, nil),
		remote:  rs,
		dir:     dir,
	}
}

func (h *harness) run(t *testing.T, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(Options{
		Session:   h.session,
		Sync:      h.sync,
		Store:     h.store,
		ExportDir: filepath.Join(h.dir, "export"),
		In:        strings.NewReader(strings.Join(script, "\n") + "\n"),
		Out:       &out,
	})
	app.Run(context.Background())
	return out.String()
}

const (
	signupAlice = "signup\nalice\nCorrectHorse9!\nCorrectHorse9!\nPet name?\nRex"
	loginAlice  = "login\nalice\nCorrectHorse9!"
	addGitHub   = "add\nGitHub\nalice_gh\nalice@example.com\nn\nGh-pass-123!\ny"
)

func TestApp_SignupLoginAddGet(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, loginAlice, addGitHub, "get\ngithub", "l", "health", "logout", "exit")

	assert.Contains(t, out, "Signup successful!")
	assert.Contains(t, out, "Login successful!")
	assert.Contains(t, out, "Password saved (id 1).")
	assert.Contains(t, out, "Platform: github")
	assert.Contains(t, out, "Username: alice_gh")
	assert.Contains(t, out, "Password: Gh-pass-123!")
	assert.Contains(t, out, "1. github")
	assert.Contains(t, out, "strength")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, services.Anonymous, h.session.State())
}

func TestApp_SignupMismatchedPasswords(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "signup\nbob\none\ntwo", "users", "exit")

	assert.Contains(t, out, "Error: passwords do not match")
	assert.Contains(t, out, "No users found!")
}

func TestApp_WrongLogin(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, "login\nalice\nnope", "add", "exit")

	assert.Contains(t, out, "Invalid username or password.")
	assert.Contains(t, out, "Please log in first.")
}

func TestApp_RecoverLogsIn(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, "recover\nalice\nREX\nNew-Pass-456!\ny")

	assert.Contains(t, out, "Q: Pet name?")
	assert.Contains(t, out, "Password reset successful!")
	assert.Equal(t, services.Authenticated, h.session.State())

	require.NoError(t, h.session.Logout())
	require.NoError(t, h.session.Login(context.Background(), "alice", "New-Pass-456!"))
}

func TestApp_RecoverWrongAnswer(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, "recover\nalice\ncat\nNew-Pass-456!\ny", "exit")

	assert.Contains(t, out, "Incorrect answer.")
	assert.Equal(t, services.Anonymous, h.session.State())
}

func TestApp_BackupRestoreEndsSession(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, loginAlice, addGitHub, "backup", "delete\n1", "get\ngithub", "restore\ny", "exit")

	assert.Contains(t, out, "Backup complete.")
	assert.Contains(t, out, "Password deleted!")
	assert.Contains(t, out, "No saved credentials for this platform!")
	assert.Contains(t, out, "You have been logged out.")
	assert.Contains(t, out, "Restore complete.")
	assert.Equal(t, services.Anonymous, h.session.State())

	require.NoError(t, h.session.Login(context.Background(), "alice", "CorrectHorse9!"))
	views, err := h.session.GetSecrets(context.Background(), "github")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Gh-pass-123!", views[0].Password)
}

func TestApp_RestoreWithoutBackup(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "restore\ny", "exit")
	assert.Contains(t, out, "No backup found.")
}

func TestApp_ExportImport(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, loginAlice, addGitHub, "export\n", "deleteaccount\nCorrectHorse9!\ny", "import\n\ny", "exit")

	assert.Contains(t, out, "Exported to ")
	assert.Contains(t, out, "Account deleted.")
	assert.Contains(t, out, "Imported from ")

	users, err := h.session.Vault().ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, users)
}

func TestApp_DeleteAccountCancelled(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, signupAlice, "deleteaccount\nalice\nCorrectHorse9!\nn", "users", "exit")

	assert.Contains(t, out, "Deletion of account cancelled.")
	assert.Contains(t, out, "1. alice")
}

func TestApp_BackupOnLogin(t *testing.T) {
	h := newHarness(t)

	var out bytes.Buffer
	app := NewApp(Options{
		Session:       h.session,
		Sync:          h.sync,
		Store:         h.store,
		BackupOnLogin: true,
		In:            strings.NewReader(signupAlice + "\n" + loginAlice + "\n"),
		Out:           &out,
	})
	app.Run(context.Background())

	doc, err := h.remote.Get(context.Background(), backup.DefaultCollection, backup.DefaultDocumentID)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "alice")
}

func TestApp_Generate(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "generate 24", "generate abc", "generate 1125899906842624", "exit")

	lines := strings.Split(out, "\n")
	var found bool
	for _, l := range lines {
		if i := strings.Index(l, "vault> "); i >= 0 {
			l = l[i+len("vault> "):]
		}
		if f := strings.Fields(l); len(f) > 0 && len(f[0]) == 24 {
			found = true
		}
	}
	assert.True(t, found, "expected a 24 character password in %q", out)
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Length must be between 8 and 1024.")
	assert.Contains(t, out, "Bye!", "the shell keeps running after an oversized length")
}

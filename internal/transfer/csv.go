// Package transfer exports the credential store to a pair of CSV files and
// imports it back. Ciphertext and password digests are written verbatim, so
// an export is only readable with the same vault key.
package transfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/dmitrijs2005/credvault/internal/filex"
	"github.com/dmitrijs2005/credvault/internal/models"
)

// File names used inside an export directory.
const (
	AccountsFile = "accounts.csv"
	SecretsFile  = "secrets.csv"
)

var (
	AccountsHeader = []string{"username", "password_hash", "security_question", "security_answer"}
	SecretsHeader  = []string{"id", "owner", "platform", "platform_username", "email", "secret_ciphertext"}
)

// Store is the part of the credential store used by Export and Import.
type Store interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error
}

// Export writes every account and secret of st into dir, creating it if
// needed. Existing files are overwritten.
func Export(ctx context.Context, st Store, dir string) error {
	snap, err := st.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	if _, err := filex.EnsureDir(dir); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(dir, AccountsFile), func(w io.Writer) error {
		return WriteAccounts(w, snap.Accounts)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, SecretsFile), func(w io.Writer) error {
		return WriteSecrets(w, snap.Secrets)
	})
}

// Import reads both files from dir and replaces the store contents with
// them. Any malformed file leaves the store untouched.
func Import(ctx context.Context, st Store, dir string) error {
	var snap models.Snapshot

	if err := readFile(filepath.Join(dir, AccountsFile), func(r io.Reader) (err error) {
		snap.Accounts, err = ReadAccounts(r)
		return err
	}); err != nil {
		return err
	}
	if err := readFile(filepath.Join(dir, SecretsFile), func(r io.Reader) (err error) {
		snap.Secrets, err = ReadSecrets(r)
		return err
	}); err != nil {
		return err
	}

	return st.ReplaceAll(ctx, &snap)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func WriteAccounts(w io.Writer, accs []models.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AccountsHeader); err != nil {
		return err
	}
	for _, a := range accs {
		if err := cw.Write([]string{a.Username, a.PasswordHash, a.SecurityQuestion, a.SecurityAnswer}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSecrets(w io.Writer, secs []models.Secret) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SecretsHeader); err != nil {
		return err
	}
	for _, s := range secs {
		rec := []string{strconv.FormatInt(s.ID, 10), s.Owner, s.Platform, s.PlatformUsername, s.Email, s.Ciphertext}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccounts parses an accounts file. The header must match AccountsHeader
// exactly; rows are not validated beyond their column count.
func ReadAccounts(r io.Reader) ([]models.Account, error) {
	rows, err := readAll(r, "accounts", AccountsHeader)
	if err != nil {
		return nil, err
	}

	out := make([]models.Account, 0, len(rows))
	for _, rec := range rows {
		out = append(out, models.Account{
			Username:         rec[0],
			PasswordHash:     rec[1],
			SecurityQuestion: rec[2],
			SecurityAnswer:   rec[3],
		})
	}
	return out, nil
}

// ReadSecrets parses a secrets file. The header must match SecretsHeader
// exactly and every id must be a positive integer.
func ReadSecrets(r io.Reader) ([]models.Secret, error) {
	rows, err := readAll(r, "secrets", SecretsHeader)
	if err != nil {
		return nil, err
	}

	out := make([]models.Secret, 0, len(rows))
	for i, rec := range rows {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil || id <= 0 {
			return nil, &models.RecordError{Table: "secrets", Index: i, Reason: fmt.Sprintf("bad id %q", rec[0])}
		}
		out = append(out, models.Secret{
			ID:               id,
			Owner:            rec[1],
			Platform:         rec[2],
			PlatformUsername: rec[3],
			Email:            rec[4],
			Ciphertext:       rec[5],
		})
	}
	return out, nil
}

func readAll(r io.Reader, table string, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	got, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &models.RecordError{Table: table, Index: -1, Reason: "missing header"}
		}
		return nil, &models.RecordError{Table: table, Index: -1, Reason: err.Error()}
	}
	if !slices.Equal(got, header) {
		return nil, &models.RecordError{Table: table, Index: -1, Reason: fmt.Sprintf("unexpected header %v", got)}
	}

	var rows [][]string
	for i := 0; ; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, &models.RecordError{Table: table, Index: i, Reason: err.Error()}
		}
		if len(rec) != len(header) {
			return nil, &models.RecordError{Table: table, Index: i, Reason: fmt.Sprintf("want %d fields, got %d", len(header), len(rec))}
		}
		rows = append(rows, rec)
	}
}

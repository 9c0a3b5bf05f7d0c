// Package services contains the vault engine: account lifecycle (signup,
// login, recovery, deletion) and secret lifecycle (add, get, edit, delete,
// health check) on top of the credential store.
//
// Vault itself is stateless; Session layers the per-user login state on top
// of it.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/store"
	"github.com/dmitrijs2005/credvault/internal/strength"
)

// ErrEmptyPlatform is returned by AddSecret for a blank platform name.
var ErrEmptyPlatform = errors.New("platform must not be empty")

// SecretView is a decrypted secret as returned to the caller.
type SecretView struct {
	ID               int64
	Platform         string
	PlatformUsername string
	Email            string
	Password         string
}

// HealthItem is the strength rating of one stored secret.
type HealthItem struct {
	ID       int64
	Platform string
	Rating   strength.Rating
}

// Vault orchestrates the hasher, the cipher and the credential store.
type Vault struct {
	store  *store.Store
	cipher *cryptox.Cipher
	hasher cryptox.Hasher
	log    logging.Logger

	// dummy is a digest checked on unknown usernames so that they cost as
	// much as a wrong password.
	dummyOnce sync.Once
	dummy     string
}

// NewVault wires a Vault. A nil hasher selects the default argon2id hasher
// and a nil logger discards output.
func NewVault(st *store.Store, c *cryptox.Cipher, h cryptox.Hasher, log logging.Logger) *Vault {
	if h == nil {
		h = cryptox.NewArgon2Hasher()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Vault{store: st, cipher: c, hasher: h, log: log}
}

// ValidUsername reports whether name is non-empty and made of Unicode
// letters and digits only.
func ValidUsername(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizePlatform is the form platforms are stored and looked up in.
func NormalizePlatform(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// Signup creates an account. The answer is lower-cased before encryption so
// recovery is case-insensitive.
func (v *Vault) Signup(ctx context.Context, username, password, question, answer string) error {
	if !ValidUsername(username) {
		return common.ErrInvalidUsername
	}
	if password == "" {
		return common.ErrInvalidPassword
	}

	hash, err := v.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	q, err := v.cipher.Encrypt(question)
	if err != nil {
		return fmt.Errorf("encrypt question: %w", err)
	}
	a, err := v.cipher.Encrypt(strings.ToLower(answer))
	if err != nil {
		return fmt.Errorf("encrypt answer: %w", err)
	}

	err = v.store.Accounts(v.store.Conn()).Create(ctx, &models.Account{
		Username:         username,
		PasswordHash:     hash,
		SecurityQuestion: q,
		SecurityAnswer:   a,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return err
		}
		return fmt.Errorf("create account: %w", err)
	}

	v.log.Info(ctx, "account created", "user", username)
	return nil
}

// Login checks username and password. Unknown users and wrong passwords both
// yield common.ErrInvalidCredentials.
func (v *Vault) Login(ctx context.Context, username, password string) error {
	if err := v.authenticate(ctx, username, password); err != nil {
		v.log.Warn(ctx, "login failed", "user", username)
		return err
	}

	v.log.Info(ctx, "login", "user", username)
	return nil
}

// SecurityQuestion returns the decrypted recovery prompt of username.
func (v *Vault) SecurityQuestion(ctx context.Context, username string) (string, error) {
	acc, err := v.account(ctx, username)
	if err != nil {
		return "", err
	}
	return v.cipher.Decrypt(acc.SecurityQuestion)
}

// Recover sets a new password after a matching security answer. The answer
// is compared case-insensitively and in constant time.
func (v *Vault) Recover(ctx context.Context, username, answer, newPassword string) error {
	if newPassword == "" {
		return common.ErrInvalidPassword
	}

	acc, err := v.account(ctx, username)
	if err != nil {
		return err
	}

	stored, err := v.cipher.Decrypt(acc.SecurityAnswer)
	if err != nil {
		return fmt.Errorf("security answer of %s: %w", username, err)
	}

	if subtle.ConstantTimeCompare([]byte(strings.ToLower(answer)), []byte(stored)) != 1 {
		v.log.Warn(ctx, "recovery failed", "user", username)
		return common.ErrWrongAnswer
	}

	if err := v.setPassword(ctx, username, newPassword); err != nil {
		return err
	}

	v.log.Info(ctx, "password recovered", "user", username)
	return nil
}

// ResetPassword replaces the password of a user who knows the current one.
func (v *Vault) ResetPassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return common.ErrInvalidPassword
	}
	if err := v.authenticate(ctx, username, oldPassword); err != nil {
		v.log.Warn(ctx, "password reset failed", "user", username)
		return err
	}
	if err := v.setPassword(ctx, username, newPassword); err != nil {
		return err
	}
	v.log.Info(ctx, "password reset", "user", username)
	return nil
}

// DeleteAccount removes username and all of its secrets after checking the
// password.
func (v *Vault) DeleteAccount(ctx context.Context, username, password string) error {
	if err := v.authenticate(ctx, username, password); err != nil {
		v.log.Warn(ctx, "account deletion failed", "user", username)
		return err
	}
	if err := v.store.DeleteAccount(ctx, username); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	v.log.Info(ctx, "account deleted", "user", username)
	return nil
}

// ListUsers returns every username, sorted.
func (v *Vault) ListUsers(ctx context.Context) ([]string, error) {
	accs, err := v.store.Accounts(v.store.Conn()).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	names := make([]string, 0, len(accs))
	for _, a := range accs {
		names = append(names, a.Username)
	}
	return names, nil
}

// AddSecret encrypts plaintext and stores it for owner under platform. The
// strength of plaintext is not checked here.
func (v *Vault) AddSecret(ctx context.Context, owner, platform, platformUser, email, plaintext string) (int64, error) {
	platform = NormalizePlatform(platform)
	if platform == "" {
		return 0, ErrEmptyPlatform
	}

	ct, err := v.cipher.Encrypt(plaintext)
	if err != nil {
		return 0, fmt.Errorf("encrypt secret: %w", err)
	}

	id, err := v.store.Secrets(v.store.Conn()).Create(ctx, &models.Secret{
		Owner:            owner,
		Platform:         platform,
		PlatformUsername: platformUser,
		Email:            email,
		Ciphertext:       ct,
	})
	if err != nil {
		return 0, fmt.Errorf("add secret: %w", err)
	}

	v.log.Info(ctx, "secret added", "user", owner, "platform", platform, "id", id)
	return id, nil
}

// GetSecrets decrypts every secret of owner stored under platform.
func (v *Vault) GetSecrets(ctx context.Context, owner, platform string) ([]SecretView, error) {
	rows, err := v.store.Secrets(v.store.Conn()).FindByPlatform(ctx, owner, NormalizePlatform(platform))
	if err != nil {
		return nil, fmt.Errorf("find secrets: %w", err)
	}

	out := make([]SecretView, 0, len(rows))
	for _, r := range rows {
		pw, err := v.cipher.Decrypt(r.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("secret %d: %w", r.ID, err)
		}
		out = append(out, SecretView{
			ID:               r.ID,
			Platform:         r.Platform,
			PlatformUsername: r.PlatformUsername,
			Email:            r.Email,
			Password:         pw,
		})
	}
	return out, nil
}

// ListPlatforms returns the distinct platforms owner has secrets for.
func (v *Vault) ListPlatforms(ctx context.Context, owner string) ([]string, error) {
	ps, err := v.store.Secrets(v.store.Conn()).ListPlatforms(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	return ps, nil
}

// EditSecret replaces the platform username and password of secret id.
func (v *Vault) EditSecret(ctx context.Context, owner string, id int64, platformUser, plaintext string) error {
	ct, err := v.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	if err := v.store.Secrets(v.store.Conn()).Update(ctx, owner, id, platformUser, ct); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("edit secret: %w", err)
	}

	v.log.Info(ctx, "secret updated", "user", owner, "id", id)
	return nil
}

// DeleteSecret removes secret id of owner.
func (v *Vault) DeleteSecret(ctx context.Context, owner string, id int64) error {
	if err := v.store.Secrets(v.store.Conn()).Delete(ctx, owner, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete secret: %w", err)
	}

	v.log.Info(ctx, "secret deleted", "user", owner, "id", id)
	return nil
}

// HealthReport decrypts every secret of owner and rates its strength.
func (v *Vault) HealthReport(ctx context.Context, owner string) ([]HealthItem, error) {
	rows, err := v.store.Secrets(v.store.Conn()).ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}

	out := make([]HealthItem, 0, len(rows))
	for _, r := range rows {
		pw, err := v.cipher.Decrypt(r.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("secret %d: %w", r.ID, err)
		}
		out = append(out, HealthItem{ID: r.ID, Platform: r.Platform, Rating: strength.Rate(pw)})
	}
	return out, nil
}

// Strength rates password. Advisory only.
func (v *Vault) Strength(password string) strength.Rating {
	return strength.Rate(password)
}

// GeneratePassword returns a random password of the given length.
func (v *Vault) GeneratePassword(length int) (string, error) {
	return strength.Generate(length)
}

func (v *Vault) account(ctx context.Context, username string) (*models.Account, error) {
	acc, err := v.store.Accounts(v.store.Conn()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acc, nil
}

// authenticate checks username and password without logging. Unknown users
// still pay for one hash verification and get common.ErrInvalidCredentials.
func (v *Vault) authenticate(ctx context.Context, username, password string) error {
	acc, err := v.account(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			v.burnVerify(password)
			return common.ErrInvalidCredentials
		}
		return err
	}
	return v.checkPassword(acc, password)
}

func (v *Vault) burnVerify(password string) {
	v.dummyOnce.Do(func() {
		// a failed Hash leaves dummy empty; Verify then rejects quickly
		v.dummy, _ = v.hasher.Hash("credvault-unknown-user")
	})
	_ = v.hasher.Verify(password, v.dummy)
}

func (v *Vault) checkPassword(acc *models.Account, password string) error {
	if acc.PasswordHash == "" {
		return fmt.Errorf("%w: account %s has no password hash", common.ErrCorruptRecord, acc.Username)
	}
	if !cryptox.VerifyAny(password, acc.PasswordHash) {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (v *Vault) setPassword(ctx context.Context, username, password string) error {
	hash, err := v.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return v.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := v.store.Accounts(tx).UpdatePasswordHash(ctx, username, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

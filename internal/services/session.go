package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// State is the login state of a Session.
type State int

const (
	Anonymous State = iota
	Authenticated
	RecoveryChallenge
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "Anonymous"
	case Authenticated:
		return "Authenticated"
	case RecoveryChallenge:
		return "RecoveryChallenge"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session tracks the single active user of a Vault.
//
//	Anonymous --Login--> Authenticated --Logout/DeleteAccount--> Anonymous
//	Anonymous --BeginRecovery--> RecoveryChallenge --CompleteRecovery--> Authenticated | Anonymous
//
// Calls made in the wrong state fail with common.ErrInvalidState; secret
// operations without a logged-in user fail with common.ErrUnauthorized.
// A Session is not safe for concurrent use.
type Session struct {
	vault *Vault
	state State
	user  string
}

// NewSession returns an anonymous session over v.
func NewSession(v *Vault) *Session {
	return &Session{vault: v}
}

func (s *Session) State() State { return s.state }

// User is the authenticated username, or the user being recovered while in
// RecoveryChallenge. It is empty when Anonymous.
func (s *Session) User() string { return s.user }

func (s *Session) Vault() *Vault { return s.vault }

func (s *Session) expect(st State) error {
	if s.state != st {
		return fmt.Errorf("%w: %s", common.ErrInvalidState, s.state)
	}
	return nil
}

func (s *Session) requireUser() error {
	if s.state != Authenticated {
		return common.ErrUnauthorized
	}
	return nil
}

func (s *Session) reset() {
	s.state = Anonymous
	s.user = ""
}

// Signup creates an account without logging in.
func (s *Session) Signup(ctx context.Context, username, password, question, answer string) error {
	if err := s.expect(Anonymous); err != nil {
		return err
	}
	return s.vault.Signup(ctx, username, password, question, answer)
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	if err := s.expect(Anonymous); err != nil {
		return err
	}
	if err := s.vault.Login(ctx, username, password); err != nil {
		return err
	}
	s.state, s.user = Authenticated, username
	return nil
}

func (s *Session) Logout() error {
	if err := s.expect(Authenticated); err != nil {
		return err
	}
	s.reset()
	return nil
}

// BeginRecovery enters the recovery challenge for username and returns its
// security question. An unknown user leaves the session Anonymous.
func (s *Session) BeginRecovery(ctx context.Context, username string) (string, error) {
	if err := s.expect(Anonymous); err != nil {
		return "", err
	}
	q, err := s.vault.SecurityQuestion(ctx, username)
	if err != nil {
		return "", err
	}
	s.state, s.user = RecoveryChallenge, username
	return q, nil
}

// CompleteRecovery answers the pending challenge. Success logs the user in;
// any failure drops the session back to Anonymous.
func (s *Session) CompleteRecovery(ctx context.Context, answer, newPassword string) error {
	if err := s.expect(RecoveryChallenge); err != nil {
		return err
	}
	if err := s.vault.Recover(ctx, s.user, answer, newPassword); err != nil {
		s.reset()
		return err
	}
	s.state = Authenticated
	return nil
}

func (s *Session) CancelRecovery() error {
	if err := s.expect(RecoveryChallenge); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Session) ResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	return s.vault.ResetPassword(ctx, s.user, oldPassword, newPassword)
}

// DeleteAccount removes the logged-in account and logs out.
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	if err := s.vault.DeleteAccount(ctx, s.user, password); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Session) AddSecret(ctx context.Context, platform, platformUser, email, plaintext string) (int64, error) {
	if err := s.requireUser(); err != nil {
		return 0, err
	}
	return s.vault.AddSecret(ctx, s.user, platform, platformUser, email, plaintext)
}

func (s *Session) GetSecrets(ctx context.Context, platform string) ([]SecretView, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	return s.vault.GetSecrets(ctx, s.user, platform)
}

func (s *Session) ListPlatforms(ctx context.Context) ([]string, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	return s.vault.ListPlatforms(ctx, s.user)
}

func (s *Session) EditSecret(ctx context.Context, id int64, platformUser, plaintext string) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	return s.vault.EditSecret(ctx, s.user, id, platformUser, plaintext)
}

func (s *Session) DeleteSecret(ctx context.Context, id int64) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	return s.vault.DeleteSecret(ctx, s.user, id)
}

func (s *Session) HealthReport(ctx context.Context) ([]HealthItem, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	return s.vault.HealthReport(ctx, s.user)
}

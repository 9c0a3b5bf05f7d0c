package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/credvault/internal/strength"
)

// Signup prompts for a new account. The password is entered twice; a weak
// password is reported but accepted if the user insists.
func (a *App) Signup(ctx context.Context) error {
	user, err := a.text("Enter username")
	if err != nil {
		return err
	}

	pw, err := a.secret("Enter password")
	if err != nil {
		return err
	}
	again, err := a.secret("Repeat password")
	if err != nil {
		return err
	}
	if pw != again {
		return errors.New("passwords do not match")
	}
	if r := a.vault().Strength(pw); r < strength.Strong {
		a.printf("Warning: password strength is %s.\n", r)
	}

	question, err := a.text("Set a security question (e.g. your pet's name?)")
	if err != nil {
		return err
	}
	answer, err := a.text("Answer")
	if err != nil {
		return err
	}

	if err := a.session.Signup(ctx, user, pw, question, answer); err != nil {
		return err
	}
	a.println("Signup successful!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	user, err := a.text("Enter username")
	if err != nil {
		return err
	}
	pw, err := a.secret("Enter password")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, user, pw); err != nil {
		return err
	}
	a.println("Login successful! Welcome back!")

	if a.backupOnLogin && a.sync != nil {
		a.sync.Backup(ctx)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// Recover walks through the security question and sets a new password. On
// success the user is logged in.
func (a *App) Recover(ctx context.Context) error {
	user, err := a.text("Enter your username")
	if err != nil {
		return err
	}

	q, err := a.session.BeginRecovery(ctx, user)
	if err != nil {
		return err
	}
	a.printf("Q: %s\n", q)

	answer, err := a.text("Answer")
	if err != nil {
		_ = a.session.CancelRecovery()
		return err
	}
	pw, err := a.newPassword("Enter new password", false)
	if err != nil {
		_ = a.session.CancelRecovery()
		return err
	}

	if err := a.session.CompleteRecovery(ctx, answer, pw); err != nil {
		return err
	}
	a.println("Password reset successful!")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	old, err := a.secret("Enter current password")
	if err != nil {
		return err
	}
	pw, err := a.newPassword("Enter new password", false)
	if err != nil {
		return err
	}
	if err := a.session.ResetPassword(ctx, old, pw); err != nil {
		return err
	}
	a.println("Password changed.")
	return nil
}

// DeleteAccount removes the logged-in account, or when anonymous, the account
// named at the prompt. The password is always required.
func (a *App) DeleteAccount(ctx context.Context) error {
	user := a.session.User()
	if !a.isLoggedIn() {
		var err error
		if user, err = a.text("Enter username"); err != nil {
			return err
		}
	}
	pw, err := a.secret("Enter password")
	if err != nil {
		return err
	}

	ok, err := a.confirm("All your saved passwords will be removed. Continue?")
	if err != nil {
		return err
	}
	if !ok {
		a.println("Deletion of account cancelled.")
		return nil
	}

	if a.isLoggedIn() {
		err = a.session.DeleteAccount(ctx, pw)
	} else {
		err = a.vault().DeleteAccount(ctx, user, pw)
	}
	if err != nil {
		return err
	}
	a.println("Account deleted.")
	return nil
}

func (a *App) ListUsers(ctx context.Context) error {
	users, err := a.vault().ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		a.println("No users found!")
		return nil
	}
	for i, u := range users {
		a.printf("%d. %s\n", i+1, u)
	}
	return nil
}

package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/services"
	"github.com/dmitrijs2005/credvault/internal/strength"
	"github.com/dmitrijs2005/credvault/internal/transfer"
)

func (a *App) Backup(ctx context.Context) error {
	if a.sync == nil {
		return common.ErrOffline
	}
	if err := a.sync.BackupErr(ctx); err != nil {
		return err
	}
	a.println("Backup complete.")
	return nil
}

// Restore replaces local data with the remote backup. The current session
// is closed first since its account may not survive the restore.
func (a *App) Restore(ctx context.Context) error {
	if a.sync == nil {
		return common.ErrOffline
	}
	ok, err := a.confirm("This replaces ALL local data with the remote backup. Continue?")
	if err != nil || !ok {
		return err
	}
	if err := a.sync.RestoreErr(ctx); err != nil {
		return err
	}
	a.endSession()
	a.println("Restore complete.")
	return nil
}

func (a *App) Export(ctx context.Context) error {
	dir, err := a.dir()
	if err != nil {
		return err
	}
	if err := transfer.Export(ctx, a.store, dir); err != nil {
		return err
	}
	a.printf("Exported to %s.\n", dir)
	return nil
}

func (a *App) Import(ctx context.Context) error {
	dir, err := a.dir()
	if err != nil {
		return err
	}
	ok, err := a.confirm("This replaces ALL local data with the files in " + dir + ". Continue?")
	if err != nil || !ok {
		return err
	}
	if err := transfer.Import(ctx, a.store, dir); err != nil {
		return err
	}
	a.endSession()
	a.printf("Imported from %s.\n", dir)
	return nil
}

// Generate prints a random password. args may hold the length.
func (a *App) Generate(ctx context.Context, args []string) error {
	n := strength.DefaultLength
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		n = v
	}
	pw, err := a.vault().GeneratePassword(n)
	if err != nil {
		return err
	}
	a.printf("%s (%s)\n", pw, a.vault().Strength(pw))
	return nil
}

func (a *App) dir() (string, error) {
	d, err := a.text("Directory [" + a.exportDir + "]")
	if err != nil {
		return "", err
	}
	if d == "" {
		d = a.exportDir
	}
	return d, nil
}

func (a *App) endSession() {
	if a.session.State() == services.Authenticated {
		_ = a.session.Logout()
		a.println("You have been logged out.")
	}
}

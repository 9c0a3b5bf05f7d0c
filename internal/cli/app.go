package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credvault/internal/backup"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/services"
	"github.com/dmitrijs2005/credvault/internal/strength"
	"github.com/dmitrijs2005/credvault/internal/transfer"
)

// App is the interactive shell bound to one session.
type App struct {
	session       *services.Session
	sync          *backup.Synchronizer
	store         transfer.Store
	exportDir     string
	backupOnLogin bool

	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

// Options configures NewApp.
type Options struct {
	Session *services.Session
	Sync    *backup.Synchronizer
	Store   transfer.Store

	// ExportDir is offered as the default directory for export and import.
	ExportDir string

	// BackupOnLogin runs a best-effort backup after every successful login.
	BackupOnLogin bool

	In     io.Reader
	Out    io.Writer
	Logger logging.Logger
}

func NewApp(o Options) *App {
	log := o.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		session:       o.Session,
		sync:          o.Sync,
		store:         o.Store,
		exportDir:     o.ExportDir,
		backupOnLogin: o.BackupOnLogin,
		reader:        bufio.NewReader(o.In),
		out:           o.Out,
		log:           log,
	}
}

// Run prints a banner and runs the REPL until exit or end of input.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to credvault (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.Authenticated
}

func (a *App) vault() *services.Vault {
	return a.session.Vault()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.session.User()
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

func (a *App) secret(prompt string) (string, error) {
	return GetSecret(a.reader, prompt, a.out)
}

func (a *App) confirm(prompt string) (bool, error) {
	return GetConfirm(a.reader, prompt, a.out)
}

// newPassword asks for a password until the user accepts it after seeing its
// strength, or gives up after maxPasswordAttempts.
func (a *App) newPassword(prompt string, offerGenerate bool) (string, error) {
	for i := 0; i < maxPasswordAttempts; i++ {
		var pw string
		if offerGenerate {
			gen, err := a.confirm("Generate a strong password?")
			if err != nil {
				return "", err
			}
			if gen {
				if pw, err = a.vault().GeneratePassword(strength.DefaultLength); err != nil {
					return "", err
				}
				a.printf("Generated password: %s\n", pw)
			}
		}
		if pw == "" {
			var err error
			if pw, err = a.secret(prompt); err != nil {
				return "", err
			}
		}
		if pw == "" {
			a.println("Password must not be empty.")
			continue
		}

		a.printf("Strength: %s\n", a.vault().Strength(pw))
		ok, err := a.confirm("Use this password?")
		if err != nil {
			return "", err
		}
		if ok {
			return pw, nil
		}
	}
	return "", errGaveUp
}

const maxPasswordAttempts = 3

var errGaveUp = errors.New("too many attempts")

// describe turns an engine error into a message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, common.ErrDuplicateUser):
		return "Username already exists."
	case errors.Is(err, common.ErrInvalidUsername):
		return "Username must be letters and digits only."
	case errors.Is(err, common.ErrInvalidPassword):
		return "Password must not be empty."
	case errors.Is(err, common.ErrUnknownUser):
		return "Username not found."
	case errors.Is(err, common.ErrWrongAnswer):
		return "Incorrect answer."
	case errors.Is(err, common.ErrNotFound):
		return "No such entry."
	case errors.Is(err, common.ErrIntegrity):
		return "Stored data cannot be decrypted with this key."
	case errors.Is(err, common.ErrCorruptRecord):
		return "Stored data is corrupted: " + err.Error()
	case errors.Is(err, common.ErrUnauthorized):
		return "Please log in first."
	case errors.Is(err, common.ErrInvalidState):
		return "Not available right now."
	case errors.Is(err, common.ErrOffline):
		return "Remote backup is unavailable (offline or not configured)."
	case errors.Is(err, common.ErrNoSnapshot):
		return "No backup found."
	case errors.Is(err, strength.ErrTooShort), errors.Is(err, strength.ErrTooLong):
		return fmt.Sprintf("Length must be between %d and %d.", strength.MinLength, strength.MaxLength)
	case errors.Is(err, errGaveUp):
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Recover(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	ListUsers(ctx context.Context) error

	Add(ctx context.Context) error
	Get(ctx context.Context) error
	Platforms(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Health(ctx context.Context) error
	Generate(ctx context.Context, args []string) error

	Backup(ctx context.Context) error
	Restore(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: signup, login, recover, users, deleteaccount, generate [n], restore, import, exit"
	helpLoggedIn  = "Available commands: add, get, (l)ist, edit, delete, health, generate [n], reset, deleteaccount, backup, restore, export, import, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", and
// dispatches them to a. Handler errors are reported on w and never stop the
// loop. Commands that need a login are refused while anonymous.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		prompt := "vault> "
		if s := statusFn(); s != "" {
			prompt = fmt.Sprintf("vault (%s)> ", s)
		}
		fmt.Fprint(w, prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var run func(context.Context) error
		needsLogin := true

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		case "signup":
			run, needsLogin = a.Signup, false
		case "login":
			run, needsLogin = a.Login, false
		case "recover":
			run, needsLogin = a.Recover, false
		case "users":
			run, needsLogin = a.ListUsers, false
		case "deleteaccount":
			run, needsLogin = a.DeleteAccount, false
		case "generate":
			run = func(ctx context.Context) error { return a.Generate(ctx, args) }
			needsLogin = false
		case "restore":
			run, needsLogin = a.Restore, false
		case "import":
			run, needsLogin = a.Import, false

		case "logout":
			run = a.Logout
		case "add":
			run = a.Add
		case "get":
			run = a.Get
		case "l", "list", "platforms":
			run = a.Platforms
		case "edit":
			run = a.Edit
		case "delete":
			run = a.Delete
		case "health":
			run = a.Health
		case "reset":
			run = a.ResetPassword
		case "backup":
			run = a.Backup
		case "export":
			run = a.Export

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if needsLogin && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first.")
			continue
		}
		if err := run(ctx); err != nil {
			fmt.Fprintln(w, describe(err))
		}
	}
}

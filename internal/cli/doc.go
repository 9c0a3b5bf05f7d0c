// Package cli provides the interactive credvault shell.
//
// The shell is a thin presentation layer over services.Session: it prompts
// for input, calls the vault engine and prints results. Retries (for
// example re-entering a password the user rejected after seeing its
// strength) are explicit loops here; the engine never re-prompts.
//
// Anonymous commands:
//   - signup, login, recover, users, deleteaccount, generate, restore, import
//
// Authenticated commands:
//   - add, get, platforms, edit, delete, health, generate, reset,
//     deleteaccount, backup, restore, export, import, logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli

// Package cli implements the interactive Inkwell journal shell.
//
// The shell is a small read-eval-print loop over the application services:
// journaling commands (write, list, show, delete, review), sync identity
// commands (register, login, unlock, logout, disable), synchronization
// (sync, status), and backup commands (export, import).
//
// Input helpers read plain lines, multi-line entry bodies, and no-echo
// passphrases via golang.org/x/term. All interactive reads are test-seamed
// through package variables so command handlers can be exercised without a
// terminal.
package cli

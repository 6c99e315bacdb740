package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwell-app/inkwell/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email, passphrase and device name and creates
// (or re-attaches to) the sync account. The passphrase byte slice is
// securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	deviceName, err := getSimpleText(a.reader, "Device name (e.g. laptop)", os.Stdout)
	if err != nil {
		return err
	}

	isNew, err := a.auth.Register(ctx, email, string(password), deviceName)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	if isNew {
		printlnFn("Account created. Sync is on.")
	} else {
		printlnFn("Logged in to existing account. Run 'sync' to pull your journal.")
	}
	return nil
}

// Login authenticates against an existing account; same remote exchange as
// Register.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	deviceName, err := getSimpleText(a.reader, "Device name (e.g. laptop)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, email, string(password), deviceName); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Logged in. Run 'sync' to pull your journal.")
	return nil
}

// Unlock re-enters the passphrase after a restart, verified locally against
// the stored hash, no network required.
func (a *App) Unlock(ctx context.Context) error {
	password, err := getPassword(os.Stdout, "Enter passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Unlock(ctx, string(password)); err != nil {
		printlnFn("Unlock failed:", err.Error())
		return err
	}
	printlnFn("Unlocked.")
	return nil
}

// Logout locks the session. The journal and sync settings stay on disk.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	printlnFn("Locked. Your journal stays on this device.")
	return nil
}

// Disable turns sync off and forgets the account on this device.
func (a *App) Disable(ctx context.Context) error {
	confirm, err := getSimpleText(a.reader, "Turn off sync and forget the account on this device? (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	if confirm != "yes" {
		printlnFn("Canceled.")
		return nil
	}
	if err := a.auth.Disable(ctx); err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}
	printlnFn("Sync disabled. Local entries kept.")
	return nil
}

// Status prints the sync account state and the cursor position.
func (a *App) Status(ctx context.Context) error {
	cfg, err := a.auth.Config(ctx)
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}
	if !cfg.Enabled {
		printlnFn("Sync: off")
		return nil
	}
	printlnFn("Sync: on")
	printlnFn(fmt.Sprintf("  device: %s", cfg.DeviceID))
	printlnFn(fmt.Sprintf("  last sync: %d", cfg.LastSyncAt))
	if a.isUnlocked() {
		printlnFn("  session: unlocked")
	} else {
		printlnFn("  session: locked (run 'unlock')")
	}
	return nil
}

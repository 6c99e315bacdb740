package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/inkwell-app/inkwell/internal/common"
)

// Export writes a backup bundle to path; with encrypted=true the bundle is
// sealed with a passphrase prompted from the user.
func (a *App) Export(ctx context.Context, path string, encrypted bool) error {
	var (
		data []byte
		err  error
	)
	if encrypted {
		password, perr := getPassword(os.Stdout, "Export passphrase")
		if perr != nil {
			return perr
		}
		defer common.WipeByteArray(password)
		data, err = a.export.ExportEncrypted(ctx, string(password))
	} else {
		data, err = a.export.ExportPlain(ctx)
	}
	if err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}
	printlnFn("Exported to", path)
	return nil
}

// Import restores a bundle from path, prompting for a passphrase when the
// file turns out to be encrypted.
func (a *App) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	stats, err := a.export.Import(ctx, data, "")
	if errors.Is(err, common.ErrPasswordRequired) {
		password, perr := getPassword(os.Stdout, "Import passphrase")
		if perr != nil {
			return perr
		}
		defer common.WipeByteArray(password)
		stats, err = a.export.Import(ctx, data, string(password))
	}
	if err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Imported %d entries and %d reviews.", stats.Entries, stats.Reviews))
	return nil
}

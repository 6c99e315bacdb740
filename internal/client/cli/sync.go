package cli

import (
	"context"
	"fmt"
)

// Sync runs one full bidirectional sync cycle and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	res := a.sync.FullSync(ctx)
	if !res.Success {
		printlnFn("Sync failed:", res.Error)
		return nil
	}
	printlnFn(fmt.Sprintf("Synced: %d pushed, %d pulled, %d conflicts.", res.Pushed, res.Pulled, res.Conflicts))
	if res.Conflicts > 0 {
		printlnFn("Conflicting local edits were kept and will push on the next sync.")
	}
	return nil
}

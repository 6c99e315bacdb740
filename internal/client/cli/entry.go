package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/inkwell-app/inkwell/internal/client/models"
)

// Write composes a new journal entry for a date (default today) and saves
// it. The save is local first; propagation to other devices is best effort.
func (a *App) Write(ctx context.Context) error {
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", os.Stdout)
	if err != nil {
		return err
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		printlnFn("Invalid date:", date)
		return err
	}

	content, err := GetMultiline(a.reader, "Entry", os.Stdout)
	if err != nil {
		return err
	}

	tags, err := GetTags(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	e := &models.Entry{Date: date, Content: content, Tags: tags}
	if err := a.journal.SaveEntry(ctx, e); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Saved %s (%d words).", e.ID, e.WordCount))
	return nil
}

// List prints all live entries, oldest first.
func (a *App) List(ctx context.Context) error {
	all, err := a.journal.ListEntries(ctx)
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}
	if len(all) == 0 {
		printlnFn("No entries yet. Try 'write'.")
		return nil
	}
	for _, e := range all {
		preview := e.Content
		if len(preview) > 60 {
			preview = preview[:60] + "..."
		}
		printlnFn(fmt.Sprintf("%s  %s  %s", e.Date, e.ID, preview))
	}
	return nil
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context, id string) error {
	e, err := a.journal.GetEntry(ctx, id)
	if err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("%s (%d words)", e.Date, e.WordCount))
	if len(e.Tags) > 0 {
		printlnFn("tags:", e.Tags)
	}
	printlnFn(e.Content)
	return nil
}

// Delete tombstones an entry so the deletion reaches other devices.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.journal.DeleteEntry(ctx, id); err != nil {
		printlnFn("Failed:", err.Error())
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Review composes a periodic review (weekly/monthly retrospective).
func (a *App) Review(ctx context.Context) error {
	period, err := getSimpleText(a.reader, "Period (e.g. 2026-W35 or 2026-08)", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Review", os.Stdout)
	if err != nil {
		return err
	}

	v := &models.Review{Period: period, Content: content}
	if err := a.journal.SaveReview(ctx, v); err != nil {
		printlnFn("Save failed:", err.Error())
		return err
	}
	printlnFn("Saved review", v.ID)
	return nil
}

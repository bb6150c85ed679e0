package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
)

// Records shows a page of the translation records of a file.
func (a *App) Records(ctx context.Context, args []string) error {
	fileID, err := parseID(args, "records <fileId> [page]")
	if err != nil {
		return err
	}
	if fileID != a.records.FileID() {
		if err := a.records.SelectFile(ctx, fileID); err != nil {
			return err
		}
	}
	if err := a.records.Load(ctx, parsePage(args[1:])); err != nil {
		return err
	}
	a.printRecords()
	return nil
}

func (a *App) printRecords() {
	recs := a.records.Records()
	if len(recs) == 0 {
		a.println("no records, run 'init <fileId>' first")
		return
	}

	selected := map[int64]bool{}
	for _, id := range a.selection.IDs() {
		selected[id] = true
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		mark := " "
		if selected[r.ID] {
			mark = "*"
		}
		rows = append(rows, []string{
			mark + strconv.FormatInt(r.ID, 10), r.PageRange,
			snippet(r.Field(models.FieldExtracted), 24),
			snippet(r.Field(models.FieldTranslated), 24),
			snippet(r.Field(models.FieldEdited), 24),
		})
	}
	printTable(a.out, []string{" ID", "PAGES", "EXTRACTED", "TRANSLATED", "EDITED"}, rows)
	a.println(pageFooter(a.records.Page(), a.records.PageCount(), a.records.Total()))
}

// Record prints one record in full, or edits one of its texts.
func (a *App) Record(ctx context.Context, args []string) error {
	const usage = "record <id> | record set <id> extracted|translated|edited [text]"
	if len(args) > 0 && args[0] == "set" {
		if len(args) < 3 {
			return errUsage(usage)
		}
		id, err := parseID(args[1:2], usage)
		if err != nil {
			return err
		}
		field, err := models.ParseTranslationField(args[2])
		if err != nil {
			return err
		}
		text := strings.Join(args[3:], " ")
		if text == "" {
			if text, err = GetMultiline(a.reader, "Enter "+string(field), a.out); err != nil {
				return err
			}
		}
		a.records.UpdateField(id, field, text)
		return nil
	}

	id, err := parseID(args, usage)
	if err != nil {
		return err
	}
	r, ok := a.records.Record(id)
	if !ok {
		a.printf("record %d is not on the current page\n", id)
		return nil
	}
	a.printf("record %d, pages %s\n", r.ID, r.PageRange)
	for _, f := range []models.TranslationField{models.FieldExtracted, models.FieldTranslated, models.FieldEdited} {
		a.printf("\n--- %s ---\n%s\n", f, r.Field(f))
	}
	return nil
}

// RecordAction runs one pipeline step on one record right away.
func (a *App) RecordAction(ctx context.Context, action services.RecordAction, args []string) error {
	id, err := parseID(args, string(action)+" <recordId>")
	if err != nil {
		return err
	}
	return a.records.Run(ctx, action, id)
}

// Select changes the row selection used by bulk.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("selected: %v\n", a.selection.IDs())
		return nil
	}
	switch args[0] {
	case "all":
		a.selection.SelectAll()
	case "none":
		a.selection.None()
	default:
		for _, s := range args {
			id, err := parseID([]string{s}, "select <ids...>|all|none")
			if err != nil {
				return err
			}
			if _, err := a.selection.Toggle(id); err != nil {
				return err
			}
		}
	}
	a.printf("selected: %v\n", a.selection.IDs())
	return nil
}

// Bulk queues action for every selected record.
func (a *App) Bulk(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("bulk extract|translate|edit")
	}
	action, err := services.ParseRecordAction(args[0])
	if err != nil {
		return err
	}
	items := a.selection.Items(action)
	if len(items) == 0 {
		a.println("nothing selected")
		return nil
	}
	a.queue.Enqueue(items...)
	a.selection.None()
	a.printf("queued %d %s actions\n", len(items), action)
	return nil
}

// Queue shows the bulk queue, drops its pending items or waits for it.
func (a *App) Queue(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "clear":
			a.printf("dropped %d queued actions\n", a.queue.Clear())
			return nil
		case "wait":
			return a.queue.Idle(ctx)
		default:
			return errUsage("queue [clear|wait]")
		}
	}

	if cur, ok := a.queue.Processing(); ok {
		a.printf("running: %s #%d\n", cur.Action, cur.RecordID)
	} else {
		a.println("running: nothing")
	}
	for i, it := range a.queue.Pending() {
		a.printf("%3d. %s #%d\n", i+1, it.Action, it.RecordID)
	}
	return nil
}

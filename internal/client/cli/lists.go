package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dustin/go-humanize"
)

// Files lists uploaded files. Pages are numbered from 1 here.
func (a *App) Files(ctx context.Context, args []string) error {
	l, err := a.fileService.List(ctx, parsePage(args))
	if err != nil {
		return err
	}
	if len(l.Items) == 0 {
		a.println("no files")
		return nil
	}

	rows := make([][]string, 0, len(l.Items))
	for _, f := range l.Items {
		pages := "-"
		if f.PageCount != nil {
			pages = strconv.Itoa(*f.PageCount)
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10), f.Filename, pages, f.PageRange,
			snippet(f.UserPrompt, 30), uploaded(f.UploadedAt),
		})
	}
	printTable(a.out, []string{"ID", "FILE", "PAGES", "RANGE", "USER PROMPT", "UPLOADED"}, rows)
	a.println(pageFooter(l.Page, l.Pages(), l.Total))
	return nil
}

// File edits or deletes one listed file.
func (a *App) File(ctx context.Context, args []string) error {
	const usage = "file set <id> page_count|page_range|system_prompt|user_prompt <value> | file rm <id>"
	if len(args) < 2 {
		return errUsage(usage)
	}
	id, err := parseID(args[1:2], usage)
	if err != nil {
		return err
	}

	switch args[0] {
	case "set":
		if len(args) < 3 {
			return errUsage(usage)
		}
		if err := a.fileService.UpdateField(id, models.FileField(args[2]), strings.Join(args[3:], " ")); err != nil {
			return err
		}
		a.printf("file %d: %s updated\n", id, args[2])
		return nil
	case "rm":
		f, ok := a.fileService.Get(id)
		name := fmt.Sprintf("file %d", id)
		if ok {
			name = f.Filename
		}
		if ok, err := Confirm(a.reader, "Delete "+name+"?", a.out); err != nil || !ok {
			return err
		}
		return a.fileService.Delete(ctx, id)
	}
	return errUsage(usage)
}

// Prompts lists stored prompt presets.
func (a *App) Prompts(ctx context.Context, args []string) error {
	l, err := a.promptService.List(ctx, parsePage(args))
	if err != nil {
		return err
	}
	if len(l.Items) == 0 {
		a.println("no prompts")
		return nil
	}

	rows := make([][]string, 0, len(l.Items))
	for _, p := range l.Items {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), string(p.PromptType),
			snippet(p.SystemMessage, 30), snippet(p.UserMessage, 30), uploaded(p.CreatedAt),
		})
	}
	printTable(a.out, []string{"ID", "TYPE", "SYSTEM", "USER", "CREATED"}, rows)
	a.println(pageFooter(l.Page, l.Pages(), l.Total))
	return nil
}

func uploaded(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return humanize.Time(ts.Time)
}

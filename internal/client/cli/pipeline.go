package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dustin/go-humanize"
)

// Open loads a PDF and extracts its default range.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("open <pdf>")
	}
	doc, err := a.pipeline.Open(strings.Join(args, " "))
	if err != nil {
		return err
	}
	snap := a.pipeline.Snapshot()
	a.printf("%s: %s, %d pages, range %s\n", doc.Name, humanize.Bytes(uint64(len(doc.Data))), doc.PageCount, snap.Range)
	return nil
}

// Range changes the page range. Extraction runs once the range stops
// changing.
func (a *App) Range(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage("range <start> <end>")
	}
	start, err1 := strconv.Atoi(args[0])
	end, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return errUsage("range <start> <end>")
	}
	if err := a.pipeline.SetRange(start, end); err != nil {
		return err
	}
	a.printf("range %d-%d selected\n", start, end)
	return nil
}

// Prompt sets the pipeline prompts or manages stored presets.
func (a *App) Prompt(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("prompt system|user [text] | add | edit <id> | rm <id>")
	}
	switch args[0] {
	case "system", "user":
		text := strings.Join(args[1:], " ")
		if text == "" {
			var err error
			if text, err = GetMultiline(a.reader, "Enter "+args[0]+" prompt", a.out); err != nil {
				return err
			}
		}
		if args[0] == "system" {
			return a.pipeline.SetSystemPrompt(ctx, text)
		}
		return a.pipeline.SetUserPrompt(ctx, text)
	case "add":
		p, err := a.readPrompt(models.Prompt{})
		if err != nil {
			return err
		}
		return a.promptService.Create(ctx, p)
	case "edit":
		id, err := parseID(args[1:], "prompt edit <id>")
		if err != nil {
			return err
		}
		cur, err := a.promptService.Find(ctx, id)
		if err != nil {
			return err
		}
		p, err := a.readPrompt(cur)
		if err != nil {
			return err
		}
		return a.promptService.Update(ctx, p)
	case "rm":
		id, err := parseID(args[1:], "prompt rm <id>")
		if err != nil {
			return err
		}
		if ok, err := Confirm(a.reader, fmt.Sprintf("Delete prompt %d?", id), a.out); err != nil || !ok {
			return err
		}
		return a.promptService.Delete(ctx, id)
	}
	return errUsage("prompt system|user [text] | add | edit <id> | rm <id>")
}

// readPrompt asks for the fields of a preset; empty answers keep cur.
func (a *App) readPrompt(cur models.Prompt) (models.Prompt, error) {
	kind, err := getSimpleText(a.reader, "Prompt type (translation or editing)", a.out)
	if err != nil {
		return cur, err
	}
	if kind != "" {
		cur.PromptType = models.PromptType(kind)
	}
	sys, err := GetMultiline(a.reader, "System message", a.out)
	if err != nil {
		return cur, err
	}
	if sys != "" {
		cur.SystemMessage = sys
	}
	usr, err := GetMultiline(a.reader, "User message", a.out)
	if err != nil {
		return cur, err
	}
	if usr != "" {
		cur.UserMessage = usr
	}
	return cur, nil
}

// Preset copies a stored prompt into the pipeline.
func (a *App) Preset(ctx context.Context, args []string) error {
	id, err := parseID(args, "preset <id>")
	if err != nil {
		return err
	}
	p, err := a.promptService.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := a.pipeline.ApplyPreset(ctx, p); err != nil {
		return err
	}
	a.printf("using %s preset %d\n", p.PromptType, p.ID)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s := a.pipeline.Snapshot()
	if !s.Loaded {
		a.println("no file selected")
	} else {
		a.printf("file:       %s (%d pages), range %s\n", s.File, s.PageCount, s.Range)
	}
	a.printf("tokens:     %d of %d allowed (model window %d)\n", s.NumTokens, s.TokenBudget, s.MaxTokens)
	a.printf("system:     %s\n", snippet(s.SystemPrompt, 70))
	a.printf("user:       %s\n", snippet(s.UserPrompt, 70))
	switch {
	case s.Extracting:
		a.println("extracting...")
	case s.Translating:
		a.println("translating...")
	case s.Uploading:
		a.printf("uploading %d%%\n", s.UploadProgress)
	}
	if s.ExtractedText != "" {
		a.printf("\n--- extracted ---\n%s\n", s.ExtractedText)
	}
	if s.TranslatedText != "" {
		a.printf("\n--- translated (%d prompt / %d completion tokens) ---\n%s\n", s.PromptTokens, s.CompletionTokens, s.TranslatedText)
	}
	return nil
}

// Test translates the extracted range with the current prompts.
func (a *App) Test(ctx context.Context) error {
	res, err := a.pipeline.TestTranslation(ctx)
	if err != nil {
		return err
	}
	a.printf("\n%s\n\n(%d prompt / %d completion tokens)\n", res.Translation, res.PromptTokens, res.CompletionTokens)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	a.pipeline.Clear()
	return nil
}

// Upload stores the selected file with its range and prompts.
func (a *App) Upload(ctx context.Context) error {
	last := -10
	_, err := a.pipeline.SubmitUpload(ctx, func(pct int) {
		if pct/10 != last/10 {
			last = pct
			a.printf("uploading %d%%\n", pct)
		}
	})
	return err
}

// Init creates the translation records of an uploaded file.
func (a *App) Init(ctx context.Context, args []string) error {
	id, err := parseID(args, "init <fileId>")
	if err != nil {
		return err
	}
	_, err = a.pipeline.InitiateTranslation(ctx, id)
	return err
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, errUsage(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage(usage)
	}
	return id, nil
}

// parsePage turns an optional 1-based page argument into a 0-based index.
func parsePage(args []string) int {
	if len(args) == 0 {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

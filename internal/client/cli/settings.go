package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
)

// Settings shows or changes the model settings.
func (a *App) Settings(ctx context.Context, args []string) error {
	const usage = "settings [set <model> [apiKey] | rm | models]"
	if len(args) == 0 {
		st, err := a.settingsService.Get(ctx)
		if err != nil {
			return err
		}
		a.printf("model:   %s\napi key: %s\n", st.PreferredModel, maskKey(st.APIKey))
		return nil
	}

	switch args[0] {
	case "set":
		if len(args) < 2 || len(args) > 3 {
			return errUsage(usage)
		}
		st := models.Settings{PreferredModel: args[1]}
		if len(args) == 3 {
			st.APIKey = args[2]
		} else if cached, err := a.settingsService.Cached(ctx); err == nil {
			st.APIKey = cached.APIKey
		}
		return a.settingsService.Save(ctx, st)
	case "rm":
		if ok, err := Confirm(a.reader, "Delete settings?", a.out); err != nil || !ok {
			return err
		}
		return a.settingsService.Delete(ctx)
	case "models":
		rows := make([][]string, 0, len(models.Models))
		for _, m := range models.Models {
			rows = append(rows, []string{m.ID, m.Name, strconv.Itoa(m.ContextWindow), strconv.Itoa(m.MaxOutput)})
		}
		printTable(a.out, []string{"ID", "NAME", "CONTEXT", "MAX OUTPUT"}, rows)
		return nil
	}
	return errUsage(usage)
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return fmt.Sprintf("%s…%s", key[:3], key[len(key)-4:])
}

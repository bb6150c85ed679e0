package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
	"github.com/dmitrijs2005/pdftranslator/internal/filex"
)

// Export writes every record of a file. Without a path the file goes to
// the export directory as file-<id>.<format>.
func (a *App) Export(ctx context.Context, args []string) error {
	const usage = "export <fileId> txt|json|xlsx [path] [--all]"
	all := slices.Contains(args, "--all")
	args = slices.DeleteFunc(slices.Clone(args), func(s string) bool { return s == "--all" })

	if len(args) < 2 || len(args) > 3 {
		return errUsage(usage)
	}
	fileID, err := parseID(args, usage)
	if err != nil {
		return err
	}
	format, err := services.ParseExportFormat(args[1])
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 3 {
		path = args[2]
	} else {
		dir, err := filex.ResolveDir(a.config.ExportDir)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, fmt.Sprintf("file-%d.%s", fileID, format))
	}

	n, err := a.exportService.Export(ctx, services.ExportRequest{FileID: fileID, Format: format, Path: path, DownloadAll: all})
	if err != nil {
		a.alerts.Error("Export failed")
		return err
	}
	a.alerts.Success(fmt.Sprintf("Exported %d records to %s", n, path))
	return nil
}

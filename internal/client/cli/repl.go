package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pdftranslator/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. The real App type
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Open(ctx context.Context, args []string) error
	Range(ctx context.Context, args []string) error
	Prompt(ctx context.Context, args []string) error
	Preset(ctx context.Context, args []string) error
	Status(ctx context.Context) error
	Test(ctx context.Context) error
	Clear(ctx context.Context) error
	Upload(ctx context.Context) error
	Init(ctx context.Context, args []string) error

	Files(ctx context.Context, args []string) error
	File(ctx context.Context, args []string) error
	Prompts(ctx context.Context, args []string) error

	Records(ctx context.Context, args []string) error
	Record(ctx context.Context, args []string) error
	RecordAction(ctx context.Context, action services.RecordAction, args []string) error
	Select(ctx context.Context, args []string) error
	Bulk(ctx context.Context, args []string) error
	Queue(ctx context.Context, args []string) error

	Settings(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, help, exit"
	helpLoggedIn  = `Available commands:
  whoami, logout
  open <pdf>, range <start> <end>, status, prompt system|user [text], preset <id>
  test, clear, upload, init <fileId>
  files [page], file set <id> <field> <value>, file rm <id>
  records <fileId> [page], record <id>, record set <id> <field> [text]
  extract|translate|edit <recordId>, select <ids...>|all|none
  bulk extract|translate|edit, queue, queue clear, queue wait
  prompts [page], prompt add, prompt edit <id>, prompt rm <id>
  settings, settings set <model> [apiKey], settings rm, settings models
  export <fileId> txt|json|xlsx [path] [--all]  (xlsx cells hold at most 32767 characters)
  exit`
)

// runREPL reads commands from scanner until EOF or "exit"/"quit" and
// dispatches them to a.
//
// Commands other than signup, login, help and exit require a session.
// Errors returned by handlers are printed and the loop goes on; services
// already publish their own alerts.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pdftr %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "signup":
			report(a.Signup(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		}

		if !a.isLoggedIn() {
			printlnFn("Please log in first (type 'help' for commands)")
			continue
		}

		var err error
		switch cmd {
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "open":
			err = a.Open(ctx, args)
		case "range":
			err = a.Range(ctx, args)
		case "prompt":
			err = a.Prompt(ctx, args)
		case "preset":
			err = a.Preset(ctx, args)
		case "status":
			err = a.Status(ctx)
		case "test":
			err = a.Test(ctx)
		case "clear":
			err = a.Clear(ctx)
		case "upload":
			err = a.Upload(ctx)
		case "init":
			err = a.Init(ctx, args)
		case "files":
			err = a.Files(ctx, args)
		case "file":
			err = a.File(ctx, args)
		case "prompts":
			err = a.Prompts(ctx, args)
		case "records":
			err = a.Records(ctx, args)
		case "record":
			err = a.Record(ctx, args)
		case "extract":
			err = a.RecordAction(ctx, services.ActionExtract, args)
		case "translate":
			err = a.RecordAction(ctx, services.ActionTranslate, args)
		case "edit":
			err = a.RecordAction(ctx, services.ActionEdit, args)
		case "select":
			err = a.Select(ctx, args)
		case "bulk":
			err = a.Bulk(ctx, args)
		case "queue":
			err = a.Queue(ctx, args)
		case "settings":
			err = a.Settings(ctx, args)
		case "export":
			err = a.Export(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
		report(err)
	}
}

func report(err error) {
	if err != nil {
		printlnFn("error:", err)
	}
}

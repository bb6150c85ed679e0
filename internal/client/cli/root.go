package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
)

// Run starts the background workers and the REPL, and blocks until the
// user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

func (a *App) Root(ctx context.Context) {
	a.println("Welcome to pdftranslator CLI (type 'help' for commands)")

	ok, err := a.authService.Restore(ctx)
	switch {
	case err != nil:
		a.log.Warn(ctx, "session restore failed", "error", err)
	case ok:
		a.println("Session restored")
		a.afterLogin(ctx)
	}

	stopRefresher := a.authService.StartRefresher(ctx, a.config.RefreshInterval)
	defer stopRefresher()

	qctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := a.queue.Run(qctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error(ctx, "bulk queue stopped", "error", err)
		}
	}()

	scanner := bufio.NewScanner(&lineReader{r: a.reader})
	printlnFn = func(args ...any) (int, error) { return fmt.Fprintln(a.out, args...) }
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) afterLogin(ctx context.Context) {
	if err := a.pipeline.LoadPrompts(ctx); err != nil {
		a.log.Warn(ctx, "loading saved prompts", "error", err)
	}
}

// lineReader hands out at most one line per Read so a Scanner on top of it
// never buffers input the interactive prompts still need.
type lineReader struct {
	r       *bufio.Reader
	pending []byte
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		line, err := l.r.ReadBytes('\n')
		if len(line) == 0 {
			return 0, err
		}
		l.pending = line
	}
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

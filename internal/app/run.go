package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/animath/internal/ctxlog"
	"github.com/specialistvlad/animath/internal/fsutil"
	"github.com/specialistvlad/animath/internal/notify"
	"github.com/specialistvlad/animath/internal/script"
)

// DemoDir is the directory under the project root holding bundled scripts.
const DemoDir = "demo"

// textWorkspace is the workspace of direct text mode, under DemoDir.
const textWorkspace = "ws"

// Run executes the action selected by the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	mode := a.config.Mode()
	a.logger.Debug("App.Run method started.", "mode", mode)

	if mode == ModeNone {
		return errors.New("nothing to do: give a text, --demo or -i")
	}
	a.logIgnoredInputs(mode)

	n := a.openNotifier(ctx)
	defer func() {
		if err := n.Close(); err != nil {
			a.logger.Warn("Failed to close notifier.", "error", err)
		}
	}()

	var err error
	switch mode {
	case ModeText:
		err = a.runText(ctx, n)
	case ModeDemo:
		err = a.runDemo(ctx, n)
	case ModeInput:
		err = a.runScript(ctx, n, a.config.InputPath)
	}
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) logIgnoredInputs(mode Mode) {
	if mode == ModeText && a.config.Demo != "" {
		a.logger.Warn("Text given, ignoring --demo.", "demo", a.config.Demo)
	}
	if mode != ModeInput && a.config.InputPath != "" {
		a.logger.Warn("Ignoring -i.", "mode", mode, "input", a.config.InputPath)
	}
}

// openNotifier connects the notifier from the settings file. A preview
// server that cannot be reached only costs the events, never the render.
func (a *App) openNotifier(ctx context.Context) notify.Notifier {
	if a.notifier != nil {
		return a.notifier
	}
	if a.settings.Notify == nil {
		return notify.Nop{}
	}
	sio, err := notify.DialSocketIO(ctx, *a.settings.Notify)
	if err != nil {
		a.logger.Warn("Render events disabled.", "error", err)
		return notify.Nop{}
	}
	return sio
}

// runText renders the text body into <root>/demo/ws and copies the image
// into the working directory.
func (a *App) runText(ctx context.Context, n notify.Notifier) error {
	ws := filepath.Join(a.projectRoot, DemoDir, textWorkspace)
	if err := fsutil.EnsureDir(ws); err != nil {
		return err
	}

	res, err := a.renderer.Render(ctx, a.config.Text, ws, a.config.Output)
	if err != nil {
		return fmt.Errorf("failed to render text: %w", err)
	}

	dst, err := fsutil.CopyFile(res.PNGPath, a.config.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to copy image: %w", err)
	}
	a.logger.Info("Image written.", "path", dst)
	fmt.Fprintln(a.outW, dst)

	if err := n.Rendered(ctx, notify.Event{Text: a.config.Text, Name: a.config.Output, PNG: dst}); err != nil {
		a.logger.Warn("Failed to publish render event.", "error", err)
	}
	return nil
}

// runDemo parses <root>/demo/<name>.
func (a *App) runDemo(ctx context.Context, n notify.Notifier) error {
	demoDir := filepath.Join(a.projectRoot, DemoDir)
	path := filepath.Join(demoDir, a.config.Demo)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		available, listErr := fsutil.ListFiles(demoDir, script.WorkspaceSuffix)
		if listErr != nil || len(available) == 0 {
			return fmt.Errorf("demo %q not found in %s", a.config.Demo, demoDir)
		}
		return fmt.Errorf("demo %q not found in %s (available: %s)", a.config.Demo, demoDir, strings.Join(available, ", "))
	}
	return a.runScript(ctx, n, path)
}

func (a *App) runScript(ctx context.Context, n notify.Notifier, path string) error {
	parser := script.NewParser(a.renderer, script.WithNaming(a.naming), script.WithNotifier(n))
	report, err := parser.Parse(ctx, path)
	if err != nil {
		return err
	}
	for _, r := range report.Renders {
		fmt.Fprintln(a.outW, r.Result.PNGPath)
	}
	return nil
}

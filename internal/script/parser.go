package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/animath/internal/ctxlog"
	"github.com/specialistvlad/animath/internal/fsutil"
	"github.com/specialistvlad/animath/internal/notify"
	"github.com/specialistvlad/animath/internal/render"
)

// WorkspaceSuffix is appended to a script's base name to form its workspace.
const WorkspaceSuffix = "-ws"

// Renderer is the part of render.Renderer the parser depends on.
type Renderer interface {
	Render(ctx context.Context, body, workspace, name string) (*render.Result, error)
}

// Rendered pairs a directive with the artifacts produced for it.
type Rendered struct {
	Directive
	Name   string
	Result *render.Result
}

// Report summarizes one parse.
type Report struct {
	Script     string
	Workspace  string
	Directives []Directive
	Renders    []Rendered
}

// Parser drives a Renderer over the directives of a script.
type Parser struct {
	renderer Renderer
	naming   Naming
	notifier notify.Notifier
}

// Option configures a Parser.
type Option func(*Parser)

// WithNaming selects the artifact naming strategy.
func WithNaming(n Naming) Option {
	return func(p *Parser) {
		p.naming = n
	}
}

// WithNotifier publishes an event after every successful render.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Parser) {
		p.notifier = n
	}
}

// NewParser creates a Parser rendering through r.
func NewParser(r Renderer, opts ...Option) *Parser {
	p := &Parser{
		renderer: r,
		naming:   DefaultNaming,
		notifier: notify.Nop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WorkspaceFor returns the workspace directory of the script at path: a
// sibling directory named after the script without its extension.
func WorkspaceFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(path), base+WorkspaceSuffix)
}

// Parse creates the script's workspace if needed and renders each directive
// in file order. The first failed render stops the parse; the report then
// covers the directives rendered so far.
func (p *Parser) Parse(ctx context.Context, path string) (*Report, error) {
	ctx = ctxlog.With(ctx, "script", path)
	logger := ctxlog.FromContext(ctx)
	report := &Report{Script: path, Workspace: WorkspaceFor(path)}

	if err := fsutil.EnsureDir(report.Workspace); err != nil {
		return report, err
	}

	f, err := os.Open(path)
	if err != nil {
		return report, fmt.Errorf("failed to open script: %w", err)
	}
	directives, err := Scan(f)
	f.Close()
	var encErr *EncodingError
	if errors.As(err, &encErr) {
		return report, fmt.Errorf("%s:%d: %w", path, encErr.Line, ErrInvalidEncoding)
	}
	if err != nil {
		return report, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	report.Directives = directives
	logger.Debug("Script scanned.", "workspace", report.Workspace, "directives", len(directives))

	if len(directives) == 0 {
		logger.Info("No display directives found.")
		return report, nil
	}

	for i, d := range directives {
		name := p.naming.Name(i+1, d)
		logger.Debug("Rendering directive.", "line", d.Line, "name", name)

		res, err := p.renderer.Render(ctx, d.Text, report.Workspace, name)
		if err != nil {
			return report, fmt.Errorf("%s:%d: %w", path, d.Line, err)
		}
		report.Renders = append(report.Renders, Rendered{Directive: d, Name: name, Result: res})

		event := notify.Event{
			Script: path,
			Line:   d.Line,
			Text:   d.Text,
			Name:   name,
			PNG:    res.PNGPath,
		}
		if err := p.notifier.Rendered(ctx, event); err != nil {
			logger.Warn("Failed to publish render event.", "line", d.Line, "error", err)
		}
	}

	logger.Info("Script rendered.", "renders", len(report.Renders), "workspace", report.Workspace)
	return report, nil
}

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/specialistvlad/animath/internal/ctxlog"
)

// Toolchain names the external programs and the raster resolution.
type Toolchain struct {
	Latex          string
	Dvipng         string
	DPI            int
	ExtraLatexArgs []string
}

// DefaultToolchain returns latex and dvipng from PATH at 600 DPI. LaTeX runs
// in nonstop mode so an invalid body fails instead of waiting on stdin.
func DefaultToolchain() Toolchain {
	return Toolchain{
		Latex:          "latex",
		Dvipng:         "dvipng",
		DPI:            600,
		ExtraLatexArgs: []string{"-interaction=nonstopmode"},
	}
}

// Result describes the artifacts of one render and the tool runs behind them.
type Result struct {
	TexPath string
	DviPath string
	PNGPath string
	Steps   []*StepResult
}

// Renderer produces images from LaTeX bodies. It is not safe for concurrent
// renders into the same workspace with the same name.
type Renderer struct {
	toolchain Toolchain
	executor  Executor
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithExecutor replaces the os/exec based executor.
func WithExecutor(e Executor) Option {
	return func(r *Renderer) {
		r.executor = e
	}
}

// New creates a Renderer. Zero fields of tc fall back to DefaultToolchain.
func New(tc Toolchain, opts ...Option) *Renderer {
	def := DefaultToolchain()
	if tc.Latex == "" {
		tc.Latex = def.Latex
	}
	if tc.Dvipng == "" {
		tc.Dvipng = def.Dvipng
	}
	if tc.DPI <= 0 {
		tc.DPI = def.DPI
	}
	if tc.ExtraLatexArgs == nil {
		tc.ExtraLatexArgs = def.ExtraLatexArgs
	}

	r := &Renderer{toolchain: tc, executor: ExecExecutor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Toolchain returns the effective toolchain.
func (r *Renderer) Toolchain() Toolchain {
	return r.toolchain
}

// Render writes body as {workspace}/{name}.tex, compiles it to .dvi and
// rasterizes it to .png. The workspace must already exist. An empty name
// means DefaultName. Existing artifacts with the same name are overwritten.
//
// On failure the returned Result holds whatever steps ran.
func (r *Renderer) Render(ctx context.Context, body, workspace, name string) (*Result, error) {
	if name == "" {
		name = DefaultName
	}
	logger := ctxlog.FromContext(ctx).With("workspace", workspace, "name", name)

	res := &Result{
		TexPath: filepath.Join(workspace, name+".tex"),
		DviPath: filepath.Join(workspace, name+".dvi"),
		PNGPath: filepath.Join(workspace, name+".png"),
	}

	if err := os.WriteFile(res.TexPath, []byte(Document(body)), 0644); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", res.TexPath, err)
	}
	logger.Debug("Document written.", "path", res.TexPath, "bytes", len(body))

	latexArgs := append(append([]string{}, r.toolchain.ExtraLatexArgs...), name+".tex")
	if err := r.step(ctx, res, workspace, r.toolchain.Latex, latexArgs, res.DviPath); err != nil {
		return res, err
	}

	dvipngArgs := []string{name + ".dvi", "-o", name + ".png", "-D", strconv.Itoa(r.toolchain.DPI)}
	if err := r.step(ctx, res, workspace, r.toolchain.Dvipng, dvipngArgs, res.PNGPath); err != nil {
		return res, err
	}

	logger.Info("Rendered.", "png", res.PNGPath)
	return res, nil
}

// step runs one tool and checks that it left want behind.
func (r *Renderer) step(ctx context.Context, res *Result, dir, tool string, args []string, want string) error {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return wrapToolError(err, nil, tool)
	}

	logger.Debug("Running tool.", "tool", tool, "args", args, "dir", dir)
	step, err := r.executor.Execute(ctx, Command{Dir: dir, Name: tool, Args: args})
	if step != nil {
		res.Steps = append(res.Steps, step)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn("Tool interrupted.", "tool", tool, "error", err)
			return wrapToolError(ctxErr, step, tool)
		}
		if step != nil {
			logger.Warn("Tool failed.", "tool", tool, "exit_code", step.ExitCode, "error", err,
				"stdout", step.Stdout, "stderr", step.Stderr)
		}
		return wrapToolError(err, step, tool)
	}
	if step != nil {
		logger.Debug("Tool finished.", "tool", tool, "exit_code", step.ExitCode, "duration", step.Duration)
	}

	if _, err := os.Stat(want); err != nil {
		return outputMissingError(tool, want)
	}
	return nil
}

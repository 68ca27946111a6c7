package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeToolMissing   = "RENDER_TOOL_MISSING"
	codeToolFailed    = "RENDER_TOOL_FAILED"
	codeOutputMissing = "RENDER_OUTPUT_MISSING"
	codeCanceled      = "RENDER_CANCELED"
)

var (
	// ErrToolMissing marks a render whose compiler or converter could not be
	// started because the executable was not found.
	ErrToolMissing = errors.New("render tool missing")
	// ErrToolFailed marks a tool that ran and exited unsuccessfully.
	ErrToolFailed = errors.New("render tool failed")
	// ErrOutputMissing marks a tool that exited cleanly without writing the
	// file the next step needs.
	ErrOutputMissing = errors.New("render output missing")
)

// wrapToolError classifies an Executor failure. The returned error matches
// one of the package sentinels with errors.Is and carries the
// goerrors.CategoryCommand category.
func wrapToolError(err error, step *StepResult, tool string) error {
	if err == nil {
		return nil
	}
	var execErr *exec.Error
	switch {
	case errors.As(err, &execErr):
		return fmt.Errorf("%w: %w", ErrToolMissing,
			goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("%s could not be found", tool)).
				WithTextCode(codeToolMissing))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", err,
			goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("%s was interrupted", tool)).
				WithTextCode(codeCanceled))
	}

	exitCode := -1
	if step != nil {
		exitCode = step.ExitCode
	}
	return fmt.Errorf("%w: %w", ErrToolFailed,
		goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("%s exited with code %d", tool, exitCode)).
			WithTextCode(codeToolFailed))
}

func outputMissingError(tool, path string) error {
	err := fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	return fmt.Errorf("%w: %w", ErrOutputMissing,
		goerrors.Wrap(err, goerrors.CategoryCommand, fmt.Sprintf("%s did not produce %s", tool, path)).
			WithTextCode(codeOutputMissing))
}

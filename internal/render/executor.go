package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// StepResult holds what a single tool invocation produced.
type StepResult struct {
	Tool     string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs an external command to completion. A non-nil error means the
// command could not be started or exited unsuccessfully; the returned
// StepResult is populated as far as possible in both cases.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (*StepResult, error)
}

// DefaultWaitDelay bounds how long a canceled tool may keep its output
// pipes open after it has been killed.
const DefaultWaitDelay = 2 * time.Second

// ExecExecutor runs commands with os/exec. Output is captured, never echoed.
// Canceling the context kills the tool; WaitDelay (DefaultWaitDelay when
// zero) then limits the wait for children still holding its output.
type ExecExecutor struct {
	WaitDelay time.Duration
}

// Execute implements Executor.
func (e ExecExecutor) Execute(ctx context.Context, c Command) (*StepResult, error) {
	if err := lookTool(c); err != nil {
		return &StepResult{Tool: c.Name, Args: c.Args, ExitCode: -1}, err
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = e.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	res := &StepResult{
		Tool:     c.Name,
		Args:     c.Args,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	return res, err
}

// lookTool reports a tool given as a path that is not an executable file.
// Relative paths resolve against the command's directory, as os/exec does.
// Bare names are looked up in PATH by exec.Command itself.
func lookTool(c Command) error {
	if !strings.ContainsRune(c.Name, filepath.Separator) {
		return nil
	}
	path := c.Name
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	if _, err := exec.LookPath(path); err != nil {
		return err
	}
	return nil
}

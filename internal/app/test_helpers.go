package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/animath/internal/render"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// FakeToolchain is a render.Executor that behaves like a working latex and
// dvipng: it writes the .dvi and .png files the real tools would.
type FakeToolchain struct {
	mu    sync.Mutex
	Calls []render.Command
}

// Execute implements render.Executor.
func (f *FakeToolchain) Execute(_ context.Context, c render.Command) (*render.StepResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()

	var out string
	for i, arg := range c.Args {
		switch {
		case strings.HasSuffix(arg, ".tex"):
			out = strings.TrimSuffix(arg, ".tex") + ".dvi"
		case arg == "-o" && i+1 < len(c.Args):
			out = c.Args[i+1]
		}
	}
	if out != "" {
		if err := os.WriteFile(filepath.Join(c.Dir, out), []byte(c.Name), 0644); err != nil {
			return &render.StepResult{Tool: c.Name, Args: c.Args, ExitCode: 1}, err
		}
	}
	return &render.StepResult{Tool: c.Name, Args: c.Args}, nil
}

// SetupAppTest creates a new app instance for system testing, rendering
// through a FakeToolchain.
func SetupAppTest(t *testing.T, cfg Config, opts ...Option) (*App, *SafeBuffer, *FakeToolchain) {
	t.Helper()

	if cfg.WorkDir == "" {
		cfg.WorkDir = t.TempDir()
	}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	fake := &FakeToolchain{}
	opts = append([]Option{WithExecutor(fake)}, opts...)
	testApp, err := NewApp(context.Background(), logBuffer, appConfig, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("ANIMATH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer, fake
}

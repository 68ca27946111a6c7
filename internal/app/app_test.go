package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/animath/internal/notify"
	"github.com/specialistvlad/animath/internal/script"
)

type recordingNotifier struct {
	events []notify.Event
	closed bool
}

func (n *recordingNotifier) Rendered(_ context.Context, ev notify.Event) error {
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) Close() error {
	n.closed = true
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConfigMode_Priority(t *testing.T) {
	assert.Equal(t, ModeNone, (&Config{}).Mode())
	assert.Equal(t, ModeInput, (&Config{InputPath: "a"}).Mode())
	assert.Equal(t, ModeDemo, (&Config{InputPath: "a", Demo: "hello_world"}).Mode())
	assert.Equal(t, ModeText, (&Config{InputPath: "a", Demo: "hello_world", HasText: true}).Mode())
	assert.Equal(t, ModeText, (&Config{HasText: true, Text: ""}).Mode(), "an empty text is still a text")
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{WorkDir: "/tmp"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "", cfg.Naming)
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "log level", cfg: Config{LogLevel: "verbose"}},
		{name: "log format", cfg: Config{LogFormat: "xml"}},
		{name: "naming", cfg: Config{Naming: "random"}},
		{name: "output with directory", cfg: Config{Output: "../escape"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.WorkDir = t.TempDir()
			_, err := NewConfig(tt.cfg)
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
		})
	}
}

func TestNewApp_SettingsFileAndOverrides(t *testing.T) {
	wd := t.TempDir()
	root := filepath.Join(wd, "project")
	writeFile(t, filepath.Join(wd, "animath.hcl"), `
project {
  root = "project"
}
output {
  naming = "hash"
}
toolchain {
  dpi = 150
}
`)

	a, _, _ := SetupAppTest(t, Config{WorkDir: wd, InputPath: "x"})
	assert.Equal(t, root, a.ProjectRoot())
	assert.Equal(t, script.NamingHash, a.Naming())
	assert.Equal(t, 150, a.renderer.Toolchain().DPI)

	other := t.TempDir()
	a, _, _ = SetupAppTest(t, Config{WorkDir: wd, InputPath: "x", ProjectRoot: other, Naming: "shared"})
	assert.Equal(t, other, a.ProjectRoot())
	assert.Equal(t, script.NamingShared, a.Naming())
}

func TestNewApp_BadSettingsFile(t *testing.T) {
	wd := t.TempDir()
	path := filepath.Join(wd, "custom.hcl")
	writeFile(t, path, "output {\n naming = \"random\"\n}\n")

	cfg, err := NewConfig(Config{WorkDir: wd, ConfigPath: path})
	require.NoError(t, err)
	_, err = NewApp(context.Background(), &SafeBuffer{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown naming")
}

func TestRun_TextMode(t *testing.T) {
	root := t.TempDir()
	wd := t.TempDir()
	n := &recordingNotifier{}
	a, _, fake := SetupAppTest(t, Config{
		WorkDir:     wd,
		ProjectRoot: root,
		Text:        "E=mc^2",
		HasText:     true,
		Output:      "energy",
	}, WithNotifier(n))

	require.NoError(t, a.Run(context.Background()))

	ws := filepath.Join(root, "demo", "ws")
	tex, err := os.ReadFile(filepath.Join(ws, "energy.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(tex), "E=mc^2")
	assert.FileExists(t, filepath.Join(ws, "energy.png"))
	assert.FileExists(t, filepath.Join(wd, "energy.png"), "image must be copied into the working directory")

	require.Len(t, fake.Calls, 2)
	assert.Equal(t, ws, fake.Calls[0].Dir)

	require.Len(t, n.events, 1)
	assert.Equal(t, filepath.Join(wd, "energy.png"), n.events[0].PNG)
	assert.True(t, n.closed)
}

func TestRun_DemoMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "demo", "hello_world"), "你好\n显示“Hello, 世界”。\n")

	a, _, fake := SetupAppTest(t, Config{ProjectRoot: root, Demo: DefaultDemo})
	require.NoError(t, a.Run(context.Background()))

	ws := filepath.Join(root, "demo", "hello_world-ws")
	assert.FileExists(t, filepath.Join(ws, "temp.tex"))
	assert.FileExists(t, filepath.Join(ws, "temp.png"))
	assert.Len(t, fake.Calls, 2)
}

func TestRun_DemoNotFoundListsDemos(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "demo", "hello_world"), "显示“x”。\n")
	writeFile(t, filepath.Join(root, "demo", "pythagoras"), "显示“a^2+b^2=c^2”。\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo", "hello_world-ws"), 0755))

	a, _, fake := SetupAppTest(t, Config{ProjectRoot: root, Demo: "calculus"})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `demo "calculus" not found`)
	assert.Contains(t, err.Error(), "available: hello_world, pythagoras")
	assert.Empty(t, fake.Calls)
}

func TestRun_InputModeSharedNaming(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.animath")
	writeFile(t, path, "显示“T1”。\n无关\n显示“T2”。\n")

	a, _, fake := SetupAppTest(t, Config{InputPath: path, Naming: "shared"})
	require.NoError(t, a.Run(context.Background()))

	tex, err := os.ReadFile(filepath.Join(dir, "lesson-ws", "temp.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(tex), "T2")
	assert.NotContains(t, string(tex), "T1")
	assert.Len(t, fake.Calls, 4)
}

func TestRun_TextWinsOverDemoAndInput(t *testing.T) {
	root := t.TempDir()
	a, logs, _ := SetupAppTest(t, Config{
		ProjectRoot: root,
		Text:        "x",
		HasText:     true,
		Demo:        "hello_world",
		InputPath:   filepath.Join(root, "missing"),
	})
	require.NoError(t, a.Run(context.Background()))
	assert.FileExists(t, filepath.Join(root, "demo", "ws", "text.png"))
	assert.Contains(t, logs.String(), "ignoring --demo")
}

func TestRun_NothingToDo(t *testing.T) {
	a, _, _ := SetupAppTest(t, Config{})
	require.Error(t, a.Run(context.Background()))
}

package hclconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/animath/internal/ctxlog"
	"github.com/specialistvlad/animath/internal/notify"
	"github.com/specialistvlad/animath/internal/render"
)

// DefaultFile is the settings file looked up when none is given explicitly.
const DefaultFile = "animath.hcl"

// fileRoot decodes every top-level block a settings file may hold.
type fileRoot struct {
	Project   *projectBlock   `hcl:"project,block"`
	Toolchain *toolchainBlock `hcl:"toolchain,block"`
	Output    *outputBlock    `hcl:"output,block"`
	Notify    *notifyBlock    `hcl:"notify,block"`
}

type projectBlock struct {
	Root string `hcl:"root,optional"`
}

type toolchainBlock struct {
	Latex     string   `hcl:"latex,optional"`
	Dvipng    string   `hcl:"dvipng,optional"`
	DPI       int      `hcl:"dpi,optional"`
	LatexArgs []string `hcl:"latex_args,optional"`
}

type outputBlock struct {
	Naming string `hcl:"naming,optional"`
}

type notifyBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// Settings is the format-agnostic result of loading a settings file. Zero
// values mean "not set" and leave the built-in default in place.
type Settings struct {
	Source      string
	ProjectRoot string
	Toolchain   render.Toolchain
	Naming      string
	Notify      *notify.SocketIOConfig
}

// Load reads the settings file at path. A path that does not exist yields
// empty Settings, so the default file name can always be tried.
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	settings := &Settings{}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No settings file, using defaults.", "path", path)
			return settings, nil
		}
		return nil, fmt.Errorf("error accessing settings file %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	settings.Source = absPath
	configDir := filepath.Dir(absPath)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(configDir), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if root.Project != nil && root.Project.Root != "" {
		settings.ProjectRoot = root.Project.Root
		if !filepath.IsAbs(settings.ProjectRoot) {
			settings.ProjectRoot = filepath.Join(configDir, settings.ProjectRoot)
		}
	}
	if tc := root.Toolchain; tc != nil {
		settings.Toolchain = render.Toolchain{
			Latex:          tc.Latex,
			Dvipng:         tc.Dvipng,
			DPI:            tc.DPI,
			ExtraLatexArgs: tc.LatexArgs,
		}
	}
	if root.Output != nil {
		settings.Naming = root.Output.Naming
	}
	if n := root.Notify; n != nil {
		cfg := &notify.SocketIOConfig{
			URL:                n.URL,
			Namespace:          n.Namespace,
			Event:              n.Event,
			InsecureSkipVerify: n.InsecureSkipVerify,
		}
		if n.Timeout != "" {
			d, err := time.ParseDuration(n.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid notify timeout %q in %s: %w", n.Timeout, path, err)
			}
			cfg.Timeout = d
		}
		settings.Notify = cfg
	}

	logger.Debug("Settings loaded.", "path", absPath, "project_root", settings.ProjectRoot, "naming", settings.Naming, "notify", settings.Notify != nil)
	return settings, nil
}

// evalContext exposes the process environment as `env` and the directory of
// the settings file as `config_dir`.
func evalContext(configDir string) *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && pair[0] != "" {
			env[pair[0]] = cty.StringVal(pair[1])
		}
	}
	envVal := cty.MapValEmpty(cty.String)
	if len(env) > 0 {
		envVal = cty.MapVal(env)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":        envVal,
			"config_dir": cty.StringVal(configDir),
		},
	}
}

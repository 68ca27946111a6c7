package app

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/specialistvlad/animath/internal/script"
)

// DefaultOutput is the base name of the image in direct text mode.
const DefaultOutput = "text"

// DefaultDemo is the demo run by a bare --demo flag.
const DefaultDemo = "hello_world"

const configInvalidCode = "CONFIG_INVALID"

// Mode is the top-level action of a run.
type Mode int

const (
	ModeNone Mode = iota
	ModeText
	ModeDemo
	ModeInput
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeDemo:
		return "demo"
	case ModeInput:
		return "input"
	default:
		return "none"
	}
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Text      string // LaTeX body rendered directly
	HasText   bool   // Text was given, possibly empty
	Output    string // base name in text mode
	Demo      string // bundled demo name
	InputPath string // script path

	ConfigPath  string // HCL settings file
	ProjectRoot string // holds demo/; overrides the settings file
	Naming      string // overrides the settings file
	WorkDir     string // destination of the text mode image copy

	LogFormat string
	LogLevel  string
}

// Mode resolves the action. Text wins over demo, demo over input.
func (c *Config) Mode() Mode {
	switch {
	case c.HasText:
		return ModeText
	case c.Demo != "":
		return ModeDemo
	case c.InputPath != "":
		return ModeInput
	default:
		return ModeNone
	}
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Naming = strings.ToLower(strings.TrimSpace(cfg.Naming))

	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	namings := make([]any, 0, len(script.Namings()))
	for _, n := range script.Namings() {
		namings = append(namings, string(n))
	}

	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Output, validation.By(func(value any) error {
			if strings.ContainsAny(value.(string), `/\`) {
				return validation.NewError("animath.config.output_base_name", "must be a base name without directories")
			}
			return nil
		})),
		validation.Field(&cfg.Naming, validation.In(namings...)),
		validation.Field(&cfg.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&cfg.LogFormat, validation.Required, validation.In("text", "json")),
	)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration").
			WithTextCode(configInvalidCode)
	}
	return &cfg, nil
}

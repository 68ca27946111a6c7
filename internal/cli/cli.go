package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/animath/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// optionalValue is a string flag whose value may be omitted: a bare flag
// selects def, --flag=value or --flag value selects value.
type optionalValue struct {
	def   string
	value string
}

func (o *optionalValue) String() string { return o.value }

func (o *optionalValue) Set(s string) error {
	switch s {
	case "true":
		o.value = o.def
	case "false":
		o.value = ""
	default:
		o.value = s
	}
	return nil
}

func (o *optionalValue) IsBoolFlag() bool { return true }

// joinOptionalValues rewrites "--name value" into "--name=value" for flags
// with optional values, as long as value does not look like a flag.
func joinOptionalValues(args []string, names ...string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		matched := false
		for _, n := range names {
			if a == "-"+n || a == "--"+n {
				matched = true
				break
			}
		}
		if matched && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, a+"="+args[i+1])
			i++
			continue
		}
		out = append(out, a)
	}
	return out
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("animath", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
AniMath - render the display directives of AniMath scripts to PNG images.

Usage:
  animath [options] [TEXT]
  animath -i SCRIPT [options]
  animath --demo [NAME] [options]

Arguments:
  TEXT
    LaTeX document body rendered directly into <root>/demo/ws; the image is
    copied into the current directory as <output>.png.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("i", "", "Path of the AniMath script to parse.")
	outputFlag := flagSet.String("o", app.DefaultOutput, "Base name of the image in text mode.")
	demo := &optionalValue{def: app.DefaultDemo}
	flagSet.Var(demo, "demo", "Run a bundled demo script (default "+app.DefaultDemo+" when given without a name).")
	configFlag := flagSet.String("config", "", "Path to the HCL settings file (default ./animath.hcl if present).")
	rootFlag := flagSet.String("root", "", "Project root holding the demo directory (default: settings file, then current directory).")
	namingFlag := flagSet.String("naming", "", "Artifact naming for scripts: 'shared', 'index' or 'hash' (default 'shared').")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	// Flags may follow the positional text, so parsing resumes after it.
	rest := joinOptionalValues(args, "demo")
	var positional []string
	for {
		if err := flagSet.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if flagSet.NArg() == 0 {
			break
		}
		positional = append(positional, flagSet.Arg(0))
		rest = flagSet.Args()[1:]
	}
	slog.Debug("Arguments parsed successfully.", "positional", len(positional))

	if len(positional) > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q: only one TEXT may be given", positional[1])}
	}

	cfg := app.Config{
		Output:      *outputFlag,
		Demo:        demo.value,
		InputPath:   *inputFlag,
		ConfigPath:  *configFlag,
		ProjectRoot: *rootFlag,
		Naming:      *namingFlag,
		LogFormat:   *logFormatFlag,
		LogLevel:    *logLevelFlag,
	}
	if len(positional) == 1 {
		cfg.Text = positional[0]
		cfg.HasText = true
	}

	if cfg.Mode() == app.ModeNone {
		slog.Debug("No text, demo or input given, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "mode", config.Mode())
	return config, false, nil
}

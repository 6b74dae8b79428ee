package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/supertrace/internal/app"
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

// listFlag collects repeated or comma-separated flag values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("supertrace", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
supertrace - step-by-step playback of superstep message traces.

Usage:
  supertrace [options] TRACE_PATH
  supertrace [options] -follow URL

Arguments:
  TRACE_PATH
    Path to a trace log with "Initial nodes" and "Message Passed" records.

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths, renderers listFlag
	flagSet.Var(&configPaths, "config", "HCL config file or directory. May be repeated.")
	flagSet.Var(&renderers, "renderer", "Renderers to enable, comma-separated (print, socketio).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	delayFlag := flagSet.Duration("delay", 0, "Pause between supersteps, e.g. 250ms. Overrides the config file.")
	portFlag := flagSet.Int("port", 0, "HTTP port for /health, /metrics, /status and socket.io. 0 uses the config file.")
	autostartFlag := flagSet.Bool("autostart", true, "Start playback as soon as the trace is loaded.")
	watchFlag := flagSet.Bool("watch", false, "Reload the trace when the file changes.")
	exitFlag := flagSet.Bool("exit-when-done", false, "Exit once the last superstep has been shown.")
	followFlag := flagSet.String("follow", "", "Mirror the snapshots of a remote supertrace server (http://host:port).")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected a single trace path"}
	}
	if path == "" && *followFlag == "" {
		slog.Debug("No trace path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg := app.Config{
		TracePath:   path,
		FollowURL:   *followFlag,
		ConfigPaths: configPaths,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		StepDelay:   *delayFlag,
		Port:        *portFlag,
		Renderers:   renderers,
	}
	if set["autostart"] {
		cfg.Autostart = autostartFlag
	}
	if set["watch"] {
		cfg.Watch = watchFlag
	}
	if set["exit-when-done"] {
		cfg.ExitWhenDone = exitFlag
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

package cli

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/gridc/internal/app"
	"github.com/specialistvlad/gridc/internal/notify"
	"github.com/specialistvlad/gridc/internal/server"
	"github.com/spf13/cobra"
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

// Environment variables that supply flag defaults.
const (
	EnvLogLevel  = "GRIDC_LOG_LEVEL"
	EnvLogFormat = "GRIDC_LOG_FORMAT"
	EnvWorkers   = "GRIDC_WORKERS"
)

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var parsed *app.Config
	root := newRootCommand(func(cfg app.Config) error {
		c, err := app.NewConfig(cfg)
		if err != nil {
			return err
		}
		parsed = c
		return nil
	})
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parsed == nil {
		// Help was printed.
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "command", parsed.Command)
	return parsed, false, nil
}

// newRootCommand builds the command tree. Each subcommand hands its
// configuration to accept instead of running anything itself.
func newRootCommand(accept func(app.Config) error) *cobra.Command {
	var common app.Config

	root := &cobra.Command{
		Use:   "gridc",
		Short: "Compile node graphs into native functions",
		Long: `gridc compiles node graphs declared in HCL or YAML files into callable
functions. Values flowing between nodes are moved or copied exactly as often
as the graph requires, and values nobody reads are freed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&common.LogLevel, "log-level", envOr(EnvLogLevel, "info"), "Logging level: debug, info, warn or error.")
	pf.StringVar(&common.LogFormat, "log-format", envOr(EnvLogFormat, "json"), "Log output format: text or json.")

	// finish fills the fields shared by every subcommand.
	finish := func(cfg app.Config) error {
		cfg.LogLevel = strings.ToLower(common.LogLevel)
		cfg.LogFormat = strings.ToLower(common.LogFormat)
		if cfg.Workers == 0 {
			cfg.Workers = 1
		}
		return accept(cfg)
	}

	root.AddCommand(
		compileCommand(finish),
		runCommand(finish),
		dotCommand(finish),
		watchCommand(finish),
		serveCommand(finish),
	)
	return root
}

func compileCommand(finish func(app.Config) error) *cobra.Command {
	cfg := app.Config{Command: app.CommandCompile}
	cmd := &cobra.Command{
		Use:   "compile PATH...",
		Short: "Compile the functions declared in graph files and print a summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			return finish(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.Function, "function", "f", "", "Compile only the named function.")
	cmd.Flags().BoolVar(&cfg.PrintCode, "print-code", false, "Print the generated code of every function.")
	cmd.Flags().IntVar(&cfg.Workers, "workers", envInt(EnvWorkers, 4), "Number of files compiled concurrently.")
	return cmd
}

func runCommand(finish func(app.Config) error) *cobra.Command {
	cfg := app.Config{Command: app.CommandRun}
	cmd := &cobra.Command{
		Use:   "run PATH",
		Short: "Compile one function and call it with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			return finish(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.Function, "function", "f", "", "Function to call. Defaults to the first one declared.")
	cmd.Flags().StringArrayVarP(&cfg.Args, "arg", "a", nil, "JSON value of the next parameter. Repeat once per parameter.")
	return cmd
}

func dotCommand(finish func(app.Config) error) *cobra.Command {
	cfg := app.Config{Command: app.CommandDot}
	cmd := &cobra.Command{
		Use:   "dot PATH...",
		Short: "Print the graph in Graphviz DOT format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			return finish(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.Function, "function", "f", "", "Highlight the nodes the named function needs.")
	cmd.Flags().StringSliceVar(&cfg.Highlight, "highlight", nil, "Names of further nodes to highlight.")
	return cmd
}

func watchCommand(finish func(app.Config) error) *cobra.Command {
	cfg := app.Config{Command: app.CommandWatch}
	cmd := &cobra.Command{
		Use:   "watch PATH...",
		Short: "Recompile graph files whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			return finish(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.Function, "function", "f", "", "Compile only the named function.")
	cmd.Flags().BoolVar(&cfg.PrintCode, "print-code", false, "Print the generated code of every function.")
	cmd.Flags().IntVar(&cfg.Workers, "workers", envInt(EnvWorkers, 4), "Number of files compiled concurrently.")
	cmd.Flags().IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	cmd.Flags().StringVar(&cfg.NotifyURL, "notify", "", "URL of a socket.io server to notify after every compilation.")
	cmd.Flags().StringVar(&cfg.NotifyEvent, "notify-event", notify.DefaultEvent, "Event name used for notifications.")
	return cmd
}

func serveCommand(finish func(app.Config) error) *cobra.Command {
	cfg := app.Config{Command: app.CommandServe}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve compilation and calls over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return finish(cfg)
		},
	}
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", 8080, "Port to listen on.")
	cmd.Flags().IntVar(&cfg.CacheSize, "cache-size", server.DefaultCacheSize, "Number of compiled functions kept for calls.")
	return cmd
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

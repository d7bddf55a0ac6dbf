package cli

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/socgen/internal/app"
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

// flags collects the persistent flags shared by every command.
type flags struct {
	descriptors []string
	buildDir    string
	setupDir    string
	strict      bool
	logLevel    string
	logFormat   string
	debounce    time.Duration
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Positional arguments after the variant are kept in Config.Args so
// descriptor switches such as RUN_LINUX can match them literally.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f      flags
		chosen *app.Config
	)
	selectCommand := func(command string) func(*cobra.Command, []string) {
		return func(_ *cobra.Command, pos []string) {
			chosen = &app.Config{Command: command}
			if len(pos) > 0 {
				chosen.Target = pos[0]
			}
			// Only the arguments after the variant can be switches; flag
			// values and the variant name itself never are.
			if len(pos) > 1 {
				chosen.Args = pos[1:]
			}
		}
	}

	root := &cobra.Command{
		Use:   "socgen",
		Short: "Compose SoC variants from declarative descriptors.",
		Long: `socgen composes SoC variants from HCL descriptors. A variant appends to and
removes from the submodule, peripheral, configuration and port-map tables of
its base, then socgen writes the resulting build tree.

Any argument after the variant name that equals a descriptor switch (for
example RUN_LINUX) sets the configuration entry the switch names.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&f.descriptors, "descriptors", "d", nil, "Descriptor file or directory to load after the builtins. Repeatable.")
	pf.StringVar(&f.buildDir, "build-dir", "", "Build directory. Overrides the descriptor's build_dir.")
	pf.StringVar(&f.setupDir, "setup-dir", "", "Directory builtin copy sources are relative to.")
	pf.BoolVar(&f.strict, "strict", false, "Fail when a name is redefined without override = true.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	setupCmd := &cobra.Command{
		Use:   "setup VARIANT [SWITCH...]",
		Short: "Compose a variant and write its build tree",
		Args:  cobra.MinimumNArgs(1),
		Run:   selectCommand(app.CommandSetup),
	}
	showCmd := &cobra.Command{
		Use:   "show VARIANT [SWITCH...]",
		Short: "Compose a variant and print its manifest",
		Args:  cobra.MinimumNArgs(1),
		Run:   selectCommand(app.CommandShow),
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded templates and variants",
		Args:  cobra.NoArgs,
		Run:   selectCommand(app.CommandList),
	}
	watchCmd := &cobra.Command{
		Use:   "watch VARIANT [SWITCH...]",
		Short: "Run setup again whenever a descriptor changes",
		Args:  cobra.MinimumNArgs(1),
		Run:   selectCommand(app.CommandWatch),
	}
	watchCmd.Flags().DurationVar(&f.debounce, "debounce", app.DefaultDebounce, "Quiet period before a change triggers setup.")
	root.AddCommand(setupCmd, showCmd, listCmd, watchCmd)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if chosen == nil {
		// Help, or no command at all.
		slog.Debug("No command selected, exiting.")
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.", "command", chosen.Command)

	chosen.DescriptorPaths = f.descriptors
	chosen.BuildDir = f.buildDir
	chosen.SetupDir = f.setupDir
	chosen.Strict = f.strict
	chosen.LogLevel = strings.ToLower(f.logLevel)
	chosen.LogFormat = strings.ToLower(f.logFormat)
	chosen.Debounce = f.debounce

	config, err := app.NewConfig(*chosen)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

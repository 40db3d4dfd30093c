package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	lua "github.com/BattlegroundsCoH/coh-battlegrounds-sub005"
	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/config"
)

var (
	// Version can be set with the Go linker.
	Version string = "master"
	// AppName is the name of this app, as displayed in the help
	// text of the root command.
	AppName = "lua"
)

// app holds the environment and the global flags shared by all commands.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	profile    string
	workdir    string

	cfg      config.Config
	logger   *slog.Logger
	profiler interface{ Stop() }
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           AppName + " [script [args...]]",
		Short:         "Run Lua scripts and generate Lua source",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.run(args[0], args[1:])
		},
	}
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.profile, "profile", "", "write a profile of the given kind ("+strings.Join(profileModes(), ", ")+")")
	flags.StringVarP(&a.workdir, "workdir", "C", "", "resolve file names relative to this directory")

	rootCmd.AddCommand(
		newRunCmd(a),
		newCheckCmd(a),
		newGenCmd(a),
		newInspectCmd(a),
	)
	return rootCmd
}

// setup loads the configuration and applies the global flags to it.
func (a *app) setup() error {
	a.cfg = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.fs, a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.workdir != "" {
		a.cfg.Engine.WorkingDirectory = a.workdir
	}
	a.logger = a.cfg.Log.Logger(a.stderr)

	if a.profile != "" {
		p, err := startProfile(a.profile)
		if err != nil {
			return err
		}
		a.profiler = p
	}
	a.logger.Debug("configured", "config", a.configPath, "workdir", a.cfg.Engine.WorkingDirectory, "profile", a.profile)
	return nil
}

func (a *app) teardown() {
	if a.profiler != nil {
		a.profiler.Stop()
		a.profiler = nil
	}
}

// fileSystem returns the filesystem that file names are resolved in.
func (a *app) fileSystem() afero.Fs {
	if wd := a.cfg.Engine.WorkingDirectory; wd != "" {
		return afero.NewBasePathFs(a.fs, wd)
	}
	return a.fs
}

func (a *app) newState() *lua.State {
	return lua.NewState(
		lua.WithStdin(a.stdin),
		lua.WithStdout(a.stdout),
		lua.WithStderr(a.stderr),
		lua.WithFs(a.fileSystem()),
		lua.WithLogger(a.logger),
		lua.WithMaxCallDepth(a.cfg.Engine.MaxCallDepth),
	)
}

// formatError renders err the way the reference interpreter reports errors,
// including a stack traceback for runtime errors.
func formatError(err error) string {
	var rerr *lua.RuntimeError
	if !errors.As(err, &rerr) {
		return fmt.Sprintf("%s: %s", AppName, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", AppName, err)
	if len(rerr.Stack) > 0 {
		sb.WriteString("\nstack traceback:")
		for _, frame := range rerr.Stack {
			sb.WriteString("\n\t")
			sb.WriteString(frame.String())
			if frame.Line > 0 {
				fmt.Fprintf(&sb, ":%d", frame.Line)
			}
		}
	}
	return sb.String()
}

func main() {
	a := &app{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		a.teardown()
		_, _ = fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

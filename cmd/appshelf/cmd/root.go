// Package cmd provides the CLI commands for appshelf.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/config"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/logging"
	"github.com/Aman-CERP/appshelf/internal/profiling"
	"github.com/Aman-CERP/appshelf/pkg/version"
)

// Command annotations read by the persistent hooks.
const (
	// annotationSkipConfig marks commands that run on defaults and must work
	// even when the config file is broken.
	annotationSkipConfig = "appshelf/skip-config"
	// annotationFileLogging routes logs to file only, for commands that own
	// the terminal (the browser) or stdout (the MCP server).
	annotationFileLogging = "appshelf/file-logging"
)

// rootState carries persistent flags and the loaded configuration to every
// subcommand.
type rootState struct {
	configPath string
	locale     string
	debug      bool
	noColor    bool
	plain      bool
	profile    profiling.Options

	cfg        *config.Config
	session    *profiling.Session
	logCleanup func()
}

// NewRootCmd creates the root command for the appshelf CLI.
func NewRootCmd() *cobra.Command {
	s := &rootState{}

	cmd := &cobra.Command{
		Use:   "appshelf",
		Short: "Browse and search installed applications",
		Long: `appshelf lists what is installed through flatpak and dpkg, searches the
appstream metadata shipped by your distribution, and shows the details of any
application.

Run 'appshelf' in a terminal to open the interactive browser.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Annotations:   map[string]string{annotationFileLogging: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, s)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.start(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.stop()
		},
	}

	cmd.SetVersionTemplate("appshelf version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&s.configPath, "config", "", "Config file (default ~/.config/appshelf/config.yaml)")
	flags.StringVar(&s.locale, "locale", "", "Locale for names and sorting, e.g. de-DE (default from environment)")
	flags.BoolVar(&s.debug, "debug", false, "Enable debug logging to ~/.appshelf/logs/")
	flags.BoolVar(&s.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&s.plain, "plain", false, "Never start the interactive browser")
	flags.StringVar(&s.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	flags.StringVar(&s.profile.Heap, "profile-mem", "", "Write memory profile to file")
	flags.StringVar(&s.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newSearchCmd(s))
	cmd.AddCommand(newInstalledCmd(s))
	cmd.AddCommand(newShowCmd(s))
	cmd.AddCommand(newBackendsCmd(s))
	cmd.AddCommand(newCollectionsCmd(s))
	cmd.AddCommand(newStatusCmd(s))
	cmd.AddCommand(newServeCmd(s))
	cmd.AddCommand(newConfigCmd(s))
	cmd.AddCommand(newLogsCmd(s))
	cmd.AddCommand(newDoctorCmd(s))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

// printError shows coded errors with their hint and code, anything else as
// a plain message.
func printError(w io.Writer, err error) {
	if apperrors.GetCode(err) != "" {
		_, _ = fmt.Fprint(w, apperrors.FormatForCLI(err))
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %s\n", err)
}

// start loads configuration, then sets up logging and profiling.
func (s *rootState) start(cmd *cobra.Command) error {
	if cmd.Annotations[annotationSkipConfig] == "true" {
		s.cfg = config.NewConfig()
	} else {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return err
		}
		s.cfg = cfg
	}

	if s.locale != "" {
		tag, err := config.ParseLocale(s.locale)
		if err != nil {
			return fmt.Errorf("invalid --locale %q: %w", s.locale, err)
		}
		s.cfg.Locale = tag
	}
	s.cfg.Locale = s.cfg.DetectLocale()

	logCfg := logging.DefaultConfig()
	logCfg.Level = s.cfg.Log.Level
	fileOnly := cmd.Annotations[annotationFileLogging] == "true"
	switch {
	case s.debug:
		logCfg = logging.DebugConfig()
		logCfg.WriteToStderr = !fileOnly
	case fileOnly:
		logCfg = logging.FileOnlyConfig(s.cfg.Log.Level)
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	s.logCleanup = cleanup
	if s.debug {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Short()),
			slog.String("locale", s.cfg.Locale))
	}

	if s.profile.Enabled() {
		session, err := profiling.Start(s.profile)
		if err != nil {
			return err
		}
		s.session = session
	}
	return nil
}

// stop ends profiling, writing the heap profile if requested, and closes
// the log file.
func (s *rootState) stop() error {
	err := s.session.Stop()
	s.session = nil

	if s.logCleanup != nil {
		s.logCleanup()
		s.logCleanup = nil
	}
	return err
}

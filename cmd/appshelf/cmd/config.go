package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/appshelf/configs"
	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/output"
)

func newConfigCmd(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user configuration file.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. Config file (~/.config/appshelf/config.yaml or --config)
  3. Environment variables (APPSHELF_*)
  4. Command-line flags (--locale)`,
		Example: `  # Create user config from template
  appshelf config init

  # Show effective configuration
  appshelf config show

  # Print user config file path
  appshelf config path`,
	}

	cmd.AddCommand(newConfigInitCmd(s))
	cmd.AddCommand(newConfigShowCmd(s))
	cmd.AddCommand(newConfigPathCmd(s))

	return cmd
}

func newConfigInitCmd(s *rootState) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the configuration file from the documented template.

With --force an existing file is backed up and rewritten with any settings
added since it was created; values already set are kept.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, s.targetConfigPath(), force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and upgrade an existing configuration")

	return cmd
}

func newConfigShowCmd(s *rootState) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.cfg)
			}
			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print config file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), s.targetConfigPath())
			return err
		},
	}
}

// targetConfigPath is --config when given, else the user config path.
func (s *rootState) targetConfigPath() string {
	if s.configPath != "" {
		return s.configPath
	}
	return config.GetUserConfigPath()
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	_, err := os.Stat(path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !force {
		out.Warning("Configuration already exists")
		out.Statusf("📁", "Location: %s", path)
		out.Newline()
		out.Status("💡", "Use --force to upgrade with new defaults (keeps your settings)")
		return nil
	}
	if exists {
		return runConfigUpgrade(cmd, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Edit the file to customize settings")
	out.Status("", "  2. Run 'appshelf config show' to verify")
	return nil
}

// runConfigUpgrade backs up the file at path, then rewrites it as its own
// values layered over current defaults. A file that no longer parses is
// replaced by the template.
func runConfigUpgrade(cmd *cobra.Command, path string) error {
	out := output.New(cmd.OutOrStdout())

	backupPath, err := config.BackupConfig(path)
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	cfg := config.NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil || cfg.Validate() != nil {
		if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		out.Warning("Existing configuration was invalid and has been replaced by the template")
	} else {
		if err := cfg.WriteYAML(path); err != nil {
			return fmt.Errorf("failed to write upgraded config: %w", err)
		}
		out.Success("Configuration upgraded")
	}

	out.Statusf("📁", "Location: %s", path)
	out.Statusf("💾", "Backup: %s", backupPath)
	return nil
}

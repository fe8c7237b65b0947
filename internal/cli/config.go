package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/supplematch/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage supplematch configuration",
	Long: `Manage supplematch configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SUPPLEMATCH_*, e.g. SUPPLEMATCH_SCORING_MIN_SCORE_THRESHOLD)
3. Config file (~/.supplematch/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		stderr := cmd.ErrOrStderr()
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(stderr, "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(stderr, "No configuration file found (using defaults and environment)\n\n")
		}

		data, err := yaml.Marshal(redacted(appConfig))
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create ~/.supplematch/config.yaml (or the --config path) populated with every option and its default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			dir, err := configDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "config.yaml")
		}

		if err := writeDefaultConfig(path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
		fmt.Fprintf(out, "\nTo view the effective configuration:\n  %s config show\n", app)
		return nil
	},
	// the file may not exist yet, so skip loading it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

// writeDefaultConfig writes the defaults to path, refusing to overwrite
func writeDefaultConfig(path string) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s\ndelete it first to recreate", path)
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return statErr
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := "# supplematch configuration\n" +
		"#\n" +
		"# Configuration hierarchy (highest to lowest priority):\n" +
		"#   1. CLI flags\n" +
		"#   2. Environment variables (SUPPLEMATCH_*)\n" +
		"#   3. This config file\n" +
		"#   4. Built-in defaults\n\n"
	footer := "\n# Secrets are best supplied through the environment:\n" +
		"#   export SUPPLEMATCH_SOURCE_API_KEY=...\n" +
		"#   export OPENAI_API_KEY=sk-...\n" +
		"#   export SUPPLEMATCH_LLM_API_KEY=...   # any provider, including anthropic\n" +
		"#   export OLLAMA_BASE_URL=http://localhost:11434/v1\n"

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	for _, chunk := range []string{header, string(data), footer} {
		if _, err := f.WriteString(chunk); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}
	return nil
}

// redacted returns a copy of cfg with secrets masked
func redacted(cfg *model.Config) *model.Config {
	c := *cfg
	if c.Source.APIKey != "" {
		c.Source.APIKey = "***"
	}
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "***"
	}
	return &c
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

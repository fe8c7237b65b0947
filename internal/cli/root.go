package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/supplematch/internal/logger"
	"github.com/ppiankov/supplematch/internal/model"
)

const (
	app       = "supplematch"
	envPrefix = "SUPPLEMATCH"
)

// version is set at build time via -ldflags
var version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool

	appConfig *model.Config
	appLogger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   app,
	Short: "supplematch - rule-based supplement recommendations from profile and tracking data",
	Long: `supplematch scores a catalog of supplements against a user's profile,
daily check-ins and nutrition logs, and explains every score.

Each candidate is scored from declarative weighted conditions. Missing data
lowers confidence instead of the score, and severe intolerances veto a
candidate outright.

supplematch is informational. It is not medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.Reset()
		cfg, err := loadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Output.Verbose = true
		}
		if jsonLogs {
			cfg.Output.JSONLogs = true
		}

		log, err := logger.New(cfg.Output.JSONLogs, cfg.Output.Verbose)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug("using config file", zap.String("path", used))
		}

		appConfig = cfg
		appLogger = log
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	}()
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.supplematch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers defaults, the config file and SUPPLEMATCH_* environment
// variables. An explicit path must exist; the default path is optional.
func loadConfig(v *viper.Viper, path string) (*model.Config, error) {
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("marshal defaults: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys omitted from the defaults document need explicit bindings
	if err := v.BindEnv("source.api_key"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("llm.base_url", envPrefix+"_LLM_BASE_URL", "OLLAMA_BASE_URL"); err != nil {
		return nil, err
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, "."+app), nil
}

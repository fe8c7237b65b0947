package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	format      string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	catalogPath string
	dataDir     string
	llmProvider string
	llmModel    string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Generate ranked supplement recommendations for one user",
	Long: `Recommend aggregates the user's profile, check-ins and nutrition logs,
scores every catalog candidate and prints the ranked, explained result.

Example:
  supplematch recommend u-123
  supplematch recommend u-123 --json out/u-123.json --md out/u-123.md
  supplematch recommend u-123 --format json
  supplematch recommend u-123 --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON result to this path")
	recommendCmd.Flags().StringVar(&outMD, "md", "", "write the Markdown report to this path")
	recommendCmd.Flags().StringVar(&format, "format", "console", "stdout format: console, json or markdown")
	recommendCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	addPipelineFlags(recommendCmd)
}

// addPipelineFlags registers the flags shared by recommend and batch
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the disclaimer footer from Markdown reports")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog YAML (default: embedded sample catalog)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "file source directory (overrides config)")
	cmd.Flags().StringVar(&llmProvider, "llm", "", "narrative summary provider: openai, anthropic or ollama (default: disabled)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "narrative summary model")
}

// applyFlags overlays command-line flags onto the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if cmd.Flags().Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if dataDir != "" {
		cfg.Source.Kind = "file"
		cfg.Source.DataDir = dataDir
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

func runRecommend(cmd *cobra.Command, args []string) error {
	userID := args[0]
	switch format {
	case "console", "", "json", "markdown", "md":
	default:
		return fmt.Errorf("unknown format %q (expected console, json or markdown)", format)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg := appConfig
	applyFlags(cmd, cfg)

	p, err := pipeline.NewPipeline(cfg, appLogger)
	if err != nil {
		return err
	}

	appLogger.Debug("generating recommendations",
		zap.String("user_id", userID),
		zap.String("source", cfg.Source.Kind),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	result, err := p.Recommend(ctx, userID)
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if err := p.RenderReport(result, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := p.Renderer().JSON(result)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "markdown", "md":
		_, err := fmt.Fprint(out, p.Renderer().Markdown(result))
		return err
	default:
		p.Renderer().RenderSummary(out, result)
		return nil
	}
}

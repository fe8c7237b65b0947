package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/supplematch/internal/pipeline"
	"github.com/ppiankov/supplematch/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate recommendations for many users in parallel",
	Long: `Batch reads user ids from a file (one per line, # comments allowed),
runs them on a worker pool and writes a JSON and a Markdown report per user.

Example:
  supplematch batch users.txt
  supplematch batch users.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: config, then CPU count)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./supplematch-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	addPipelineFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg := appConfig
	applyFlags(cmd, cfg)

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, appLogger)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  supplematch batch\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	success, failure := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failure++
			fmt.Fprintf(stderr, "✗ %s: %v\n", r.UserID, r.Error)
			continue
		}

		base := filepath.Join(outputDir, sanitizeFilename(r.UserID))
		if err := p.RenderReport(r.Result, base+".json", base+".md"); err != nil {
			failure++
			fmt.Fprintf(stderr, "✗ %s: %v\n", r.UserID, err)
			continue
		}

		success++
		fmt.Fprintf(stderr, "✓ %s (%d recommendations, completeness %d%%)\n",
			r.UserID, len(r.Result.Recommendations), r.Result.Completeness.OverallPercentage)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d users\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", success)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failure)
	fmt.Fprintf(stderr, "\n")

	appLogger.Info("batch complete",
		zap.Int("total", len(results)),
		zap.Int("success", success),
		zap.Int("failures", failure),
	)
	if failure > 0 && success == 0 {
		return fmt.Errorf("all %d users failed", failure)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a user id into a safe file name
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.TrimLeft(s, ".")
	if s == "" {
		s = "user"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

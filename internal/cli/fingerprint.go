package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/supplematch/internal/fingerprint"
	"github.com/ppiankov/supplematch/internal/pipeline"
)

var showSnapshot bool

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <user-id>",
	Short: "Print the snapshot fingerprint used for cache invalidation",
	Long: `Fingerprint aggregates the user's snapshot and prints its 16-hex-digit
fingerprint. With --snapshot the canonical snapshot JSON is printed too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cfg := appConfig
		applyFlags(cmd, cfg)

		p, err := pipeline.NewPipeline(cfg, appLogger)
		if err != nil {
			return err
		}

		snap, fp, err := p.Snapshot(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, fp)
		if showSnapshot {
			canonical, err := fingerprint.Canonical(snap)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(canonical))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().BoolVar(&showSnapshot, "snapshot", false, "also print the canonical snapshot")
	fingerprintCmd.Flags().StringVar(&dataDir, "data-dir", "", "file source directory (overrides config)")
	fingerprintCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
}

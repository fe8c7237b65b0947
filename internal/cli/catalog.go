package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/validate"
)

var showJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate candidate catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a catalog for unknown fields, bad operators and weights",
	Long: `Validate statically checks every candidate and condition in a catalog.
Without a file argument the configured (or embedded) catalog is checked.
Exits non-zero when any error-level issue is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := catalog.ReadFile(catalogArg(args))
		if err != nil {
			return err
		}

		report := validate.Catalog(file)
		out := cmd.OutOrStdout()
		for _, issue := range report.Issues {
			fmt.Fprintln(out, issue.String())
		}
		fmt.Fprintf(out, "%d candidates, %d conditions: %d errors, %d warnings\n",
			report.Candidates, report.Conditions,
			report.Count(validate.SeverityError), report.Count(validate.SeverityWarning))

		if report.HasErrors() {
			return fmt.Errorf("catalog has %d errors", report.Count(validate.SeverityError))
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the normalized catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := catalog.Load(catalogArg(args))
		if err != nil {
			return err
		}

		var data []byte
		if showJSON {
			specs := make([]catalog.CandidateSpec, 0, len(candidates))
			for _, c := range candidates {
				specs = append(specs, c.Spec())
			}
			data, err = json.MarshalIndent(specs, "", "  ")
			data = append(data, '\n')
		} else {
			data, err = catalog.Marshal(candidates)
		}
		if err != nil {
			return fmt.Errorf("render catalog: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func catalogArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return appConfig.Catalog.Path
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	catalogShowCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON instead of YAML")
}

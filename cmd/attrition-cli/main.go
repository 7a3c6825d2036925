package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikey/attrition-predictor/internal/adapters/frontend"
	"github.com/mikey/attrition-predictor/internal/di"
)

var (
	flags      = &di.CLIFlags{}
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "attrition-cli",
	Short: "Predict employee attrition from the command line",
	Long: `attrition-cli trains the attrition model on the configured HR dataset and
scores employee files with it.

The result CSV is written to stdout (or --output); the summary and logs go to stderr.`,
	SilenceUsage: true,
}

var predictCmd = &cobra.Command{
	Use:   "predict <file.csv|file.xlsx>",
	Short: "Append attrition predictions to every row of a file",
	Example: `  attrition-cli predict employees.csv > scored.csv
  attrition-cli predict employees.xlsx --output scored.csv --dataset hr_data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFrontend(cmd, func(f *frontend.CliFrontend) error {
			_, err := f.ProcessFile(cmd.Context(), args[0], outputPath)
			return err
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the columns every input file must contain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFrontend(cmd, func(f *frontend.CliFrontend) error {
			return f.PrintSchema(cmd.Context())
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.DatasetPath, "dataset", "", "Training dataset path (overrides training.dataset_path)")
	pf.StringVar(&flags.TargetColumn, "target", "", "Target column name (overrides training.target_column)")
	pf.StringSliceVar(&flags.ExcludeColumns, "exclude", nil, "Columns to keep out of the feature set")
	pf.Float64Var(&flags.Threshold, "threshold", 0, "Probability threshold in [0, 1] for a positive label (overrides prediction.threshold)")
	pf.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and print a preview")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	predictCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result CSV to this path instead of stdout")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(schemaCmd)
}

func withFrontend(cmd *cobra.Command, fn func(f *frontend.CliFrontend) error) error {
	flags.ThresholdSet = cmd.Flags().Changed("threshold")
	return di.RunCLI(cmd.Context(), flags, fn)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

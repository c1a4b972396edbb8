package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/salaryqa/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var reanalyzeLimit int

//nolint:gochecknoglobals // Cobra boilerplate
var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze",
	Short: "Re-run anomaly analysis over approved entries",
	Long: `reanalyze walks approved entries oldest first, recomputes their anomaly
score against the current data and downgrades those that are no longer
approvable. The batch report is printed as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := setup(ctx)
		if err != nil {
			return err
		}
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Get().Error(ctx, "failed to close store", logger.Error(err))
			}
		}()

		report, err := newService(cfg, store).BatchAnalyze(ctx, reanalyzeLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	reanalyzeCmd.Flags().IntVar(&reanalyzeLimit, "limit", 0, "maximum entries to process (0 uses batch_limit)")
	rootCmd.AddCommand(reanalyzeCmd)
}

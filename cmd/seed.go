package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/salaryqa/internal/seed"
	"github.com/okian/salaryqa/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	seedPerGroup  int
	seedOutliers  int
	seedRandSeed  int64
	seedCountries []string
	seedSectors   []string
)

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert synthetic approved cohorts into the store",
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

		_, err = seed.Load(ctx, store, seed.Generate(seed.Config{
			Countries: seedCountries,
			Sectors:   seedSectors,
			PerGroup:  seedPerGroup,
			Outliers:  seedOutliers,
			Seed:      seedRandSeed,
		}))
		return err
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	def := seed.DefaultConfig()
	seedCmd.Flags().IntVar(&seedPerGroup, "per-group", def.PerGroup, "approved entries per country and sector")
	seedCmd.Flags().IntVar(&seedOutliers, "outliers", 0, "pending entries with implausible salaries")
	seedCmd.Flags().Int64Var(&seedRandSeed, "seed", def.Seed, "random seed")
	seedCmd.Flags().StringSliceVar(&seedCountries, "countries", def.Countries, "countries to generate")
	seedCmd.Flags().StringSliceVar(&seedSectors, "sectors", def.Sectors, "sectors to generate")
	rootCmd.AddCommand(seedCmd)
}

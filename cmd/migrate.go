package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/salaryqa/internal/adapters/repository"
	"github.com/okian/salaryqa/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateDown bool

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the SQL store schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := setup(ctx)
		if err != nil {
			return err
		}
		driver := strings.ToLower(cfg.StoreDriver)
		if driver == repository.DriverMemory {
			return fmt.Errorf("%w: migrations need a SQL store_driver", repository.ErrUnsupportedDriver)
		}

		if migrateDown {
			err = repository.Rollback(ctx, driver, cfg.StoreDSN)
		} else {
			err = repository.Migrate(ctx, driver, cfg.StoreDSN)
		}
		if err != nil {
			return err
		}
		logger.Get().Info(ctx, "migrations applied",
			logger.String("driver", driver),
			logger.Bool("down", migrateDown),
		)
		return nil
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back every migration")
	rootCmd.AddCommand(migrateCmd)
}

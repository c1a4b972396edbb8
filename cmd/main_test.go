package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/salaryqa/internal/adapters/repository"
	"github.com/okian/salaryqa/internal/config"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestCommands(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		convey.Convey("Then every subcommand is registered", func() {
			names := map[string]bool{}
			for _, c := range rootCmd.Commands() {
				names[c.Name()] = true
			}
			for _, want := range []string{"serve", "reanalyze", "migrate", "seed"} {
				convey.So(names[want], convey.ShouldBeTrue)
			}
			convey.So(reanalyzeCmd.Flags().Lookup("limit"), convey.ShouldNotBeNil)
			convey.So(migrateCmd.Flags().Lookup("down"), convey.ShouldNotBeNil)
		})
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given configuration for a sqlite store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "cmd.db")
		_ = os.Setenv("SALARYQA_STORE_DRIVER", "sqlite3")
		_ = os.Setenv("SALARYQA_STORE_DSN", path)
		_ = os.Setenv("SALARYQA_DUPLICATE_THRESHOLD", "80")
		defer func() {
			_ = os.Unsetenv("SALARYQA_STORE_DRIVER")
			_ = os.Unsetenv("SALARYQA_STORE_DSN")
			_ = os.Unsetenv("SALARYQA_DUPLICATE_THRESHOLD")
		}()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the store and service are built", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer store.Close()
			svc := newService(cfg, store)

			convey.Convey("Then configured thresholds and the migrated schema are in use", func() {
				st, err := svc.Stats(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.DuplicateThreshold, convey.ShouldEqual, 80)
				convey.So(st.Total, convey.ShouldEqual, 0)

				r, err := svc.Submit(ctx, model.Entry{Country: "Belgium", GrossSalary: model.Float(4000)})
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.Entry.ReviewStatus, convey.ShouldEqual, model.StatusNeedsReview)
			})
		})

		convey.Convey("When the seed command runs", func() {
			rootCmd.SetArgs([]string{"seed", "--per-group", "5", "--outliers", "1", "--countries", "Belgium", "--sectors", "Technology"})
			convey.So(rootCmd.Execute(), convey.ShouldBeNil)

			convey.Convey("Then the cohort and outlier are stored", func() {
				s, err := repository.OpenSQL(ctx, repository.DriverSQLite, path)
				convey.So(err, convey.ShouldBeNil)
				defer s.Close()
				counts, err := s.Count(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts[model.StatusApproved], convey.ShouldEqual, 5)
				convey.So(counts[model.StatusPending], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the migrate command rolls back", func() {
			rootCmd.SetArgs([]string{"migrate"})
			convey.So(rootCmd.Execute(), convey.ShouldBeNil)
			rootCmd.SetArgs([]string{"migrate", "--down"})
			convey.So(rootCmd.Execute(), convey.ShouldBeNil)
			migrateDown = false

			convey.Convey("Then the store no longer has its table", func() {
				s, err := repository.OpenSQL(ctx, repository.DriverSQLite, path)
				convey.So(err, convey.ShouldBeNil)
				defer s.Close()
				_, err = s.Count(ctx)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update runs without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx, systemMetricsInterval)
				close(done)
			}()
			<-done
			convey.So(true, convey.ShouldBeTrue)
		})
	})
}

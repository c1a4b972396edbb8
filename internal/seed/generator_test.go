package seed

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/salaryqa/internal/adapters/repository"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestGenerate(t *testing.T) {
	convey.Convey("Given the default seed configuration with two outliers", t, func() {
		cfg := DefaultConfig()
		cfg.Outliers = 2
		entries := Generate(cfg)

		convey.Convey("Then every cohort is filled and outliers are pending", func() {
			convey.So(len(entries), convey.ShouldEqual, 2*3*40+2)

			approved, pending := 0, 0
			for _, e := range entries {
				convey.So(e.GrossSalary, convey.ShouldNotBeNil)
				convey.So(e.ID, convey.ShouldNotBeEmpty)
				convey.So(*e.WorkExperience, convey.ShouldBeLessThanOrEqualTo, *e.Age-careerStartAge)
				switch e.ReviewStatus {
				case model.StatusApproved:
					approved++
					convey.So(*e.GrossSalary, convey.ShouldBeLessThan, 20000)
				case model.StatusPending:
					pending++
					convey.So(*e.GrossSalary, convey.ShouldBeGreaterThan, 15000)
				}
			}
			convey.So(approved, convey.ShouldEqual, 240)
			convey.So(pending, convey.ShouldEqual, 2)
		})

		convey.Convey("Then the same seed reproduces IDs and salaries", func() {
			again := Generate(cfg)
			for i := range entries {
				convey.So(again[i].ID, convey.ShouldEqual, entries[i].ID)
				convey.So(*again[i].GrossSalary, convey.ShouldEqual, *entries[i].GrossSalary)
			}
		})

		convey.Convey("Then a different seed yields different IDs", func() {
			other := cfg
			other.Seed = cfg.Seed + 1
			convey.So(Generate(other)[0].ID, convey.ShouldNotEqual, entries[0].ID)
		})
	})
}

func TestLoad(t *testing.T) {
	convey.Convey("Given a memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()

		convey.Convey("When generated entries are loaded", func() {
			cfg := Config{Countries: []string{"Belgium"}, Sectors: []string{"Finance"}, PerGroup: 10, Seed: 1}
			n, err := Load(ctx, store, Generate(cfg))

			convey.Convey("Then they are all stored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 10)
				counts, err := store.Count(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts[model.StatusApproved], convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the same seed is loaded twice", func() {
			cfg := Config{Countries: []string{"Belgium"}, Sectors: []string{"Finance"}, PerGroup: 10, Seed: 3}
			_, err := Load(ctx, store, Generate(cfg))
			convey.So(err, convey.ShouldBeNil)
			n, err := Load(ctx, store, Generate(cfg))

			convey.Convey("Then the second load skips every existing entry", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 0)
				counts, err := store.Count(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(counts[model.StatusApproved], convey.ShouldEqual, 10)
			})
		})
	})
}

package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/salaryqa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.DuplicateThreshold, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SALARYQA_ADDR", ":8080")
			_ = os.Setenv("SALARYQA_STORE_DRIVER", "sqlite3")
			_ = os.Setenv("SALARYQA_STORE_DSN", "/var/lib/salaryqa/entries.db")
			_ = os.Setenv("SALARYQA_DUPLICATE_THRESHOLD", "85")
			_ = os.Setenv("SALARYQA_BATCH_RATE_PER_SEC", "2.5")
			_ = os.Setenv("SALARYQA_STORE_AUTO_MIGRATE", "false")
			_ = os.Setenv("SALARYQA_STORE_CONNECT_TIMEOUT", "3s")
			_ = os.Setenv("SALARYQA_STORE_METRICS_INTERVAL", "250ms")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite3")
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "/var/lib/salaryqa/entries.db")
				convey.So(cfg.DuplicateThreshold, convey.ShouldEqual, 85)
				convey.So(cfg.BatchRatePerSec, convey.ShouldEqual, 2.5)
				convey.So(cfg.StoreAutoMigrate, convey.ShouldBeFalse)
				convey.So(cfg.StoreConnectTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.StoreMetricsInterval, convey.ShouldEqual, 250*time.Millisecond)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
# comparator tuning
addr: ":9090"
comparator_limit: 500
batch_limit: 25
similarity_weights:
  jobTitle: 20
  multinational: 2
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SALARYQA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ComparatorLimit, convey.ShouldEqual, 500)
				convey.So(cfg.BatchLimit, convey.ShouldEqual, 25)
				convey.So(cfg.DuplicateThreshold, convey.ShouldEqual, 90)
				convey.So(cfg.SimilarityWeights["jobTitle"], convey.ShouldEqual, 20)
				convey.So(cfg.SimilarityWeights["multinational"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
batch_limit: 25
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SALARYQA_CONFIG", tmpFile)
			_ = os.Setenv("SALARYQA_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BatchLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SALARYQA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SALARYQA_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("SALARYQA_BATCH_LIMIT", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the loaded values fail validation", func() {
			_ = os.Setenv("SALARYQA_STORE_DRIVER", "postgres")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the validation error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "store_dsn is required")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SALARYQA_CONFIG",
		"SALARYQA_ADDR",
		"SALARYQA_STORE_DRIVER",
		"SALARYQA_STORE_DSN",
		"SALARYQA_STORE_AUTO_MIGRATE",
		"SALARYQA_STORE_CONNECT_TIMEOUT",
		"SALARYQA_STORE_METRICS_INTERVAL",
		"SALARYQA_DUPLICATE_THRESHOLD",
		"SALARYQA_BATCH_LIMIT",
		"SALARYQA_BATCH_RATE_PER_SEC",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "salaryqa-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}

package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/intervue/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("INTERVUE_ADDR", ":8080")
			_ = os.Setenv("INTERVUE_SERVICE_URL", "https://api.example.test")
			_ = os.Setenv("INTERVUE_SERVICE_TIMEOUT_MS", "2500")
			_ = os.Setenv("INTERVUE_PAGE_LIMIT", "50")
			_ = os.Setenv("INTERVUE_SESSION_BACKEND", "redis")
			_ = os.Setenv("INTERVUE_REDIS_ADDR", "cache:6379")
			_ = os.Setenv("INTERVUE_JOURNAL_WORKERS", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ServiceURL, convey.ShouldEqual, "https://api.example.test")
				convey.So(cfg.ServiceTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.PageLimit, convey.ShouldEqual, 50)
				convey.So(cfg.SessionBackend, convey.ShouldEqual, config.BackendRedis)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "cache:6379")
				convey.So(cfg.JournalWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 4096)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
# engine
addr: ":9090"
log_format: json
page_limit: 10
journal_dsn: "postgres://intervue@db/intervue"
journal_queue_size: 128
metrics_namespace: bids
metrics_buckets_ms: [5, 50, 500]
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("INTERVUE_CONFIG", tmpFile)
			_ = os.Setenv("INTERVUE_PAGE_LIMIT", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.PageLimit, convey.ShouldEqual, 30)
				convey.So(cfg.JournalDSN, convey.ShouldEqual, "postgres://intervue@db/intervue")
				convey.So(cfg.JournalQueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.SessionBackend, convey.ShouldEqual, config.BackendMemory)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "bids")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "engine")
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{5, 50, 500})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("INTERVUE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("INTERVUE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("INTERVUE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with mixed-case enum values", func() {
			_ = os.Setenv("INTERVUE_SESSION_BACKEND", " Redis ")
			_ = os.Setenv("INTERVUE_LOG_FORMAT", "JSON")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are stored in canonical form", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SessionBackend, convey.ShouldEqual, config.BackendRedis)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with an unknown session backend", func() {
			_ = os.Setenv("INTERVUE_SESSION_BACKEND", "etcd")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("INTERVUE_PAGE_LIMIT", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"INTERVUE_CONFIG",
		"INTERVUE_ADDR",
		"INTERVUE_SERVICE_URL",
		"INTERVUE_SERVICE_TIMEOUT_MS",
		"INTERVUE_PAGE_LIMIT",
		"INTERVUE_SESSION_BACKEND",
		"INTERVUE_REDIS_ADDR",
		"INTERVUE_JOURNAL_WORKERS",
		"INTERVUE_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "intervue-config-*.yaml")
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

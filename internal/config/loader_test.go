package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pele/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pele.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const fileConfig = `
addr: ":9090"
input: data/matches.csv
input_format: fbref
group_by: [team_id]
standardize: false
weights:
  w_g: 1.5
  w_ti: 0.2
max_limit: 50
`

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.EnvFile, "")

	convey.Convey("Given no file and no environment", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults are returned", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.GroupBy, convey.ShouldResemble, []string{"season"})
		})
	})
}

func TestLoadFile(t *testing.T) {
	t.Setenv(config.EnvFile, writeConfigFile(t, fileConfig))

	convey.Convey("Given a YAML file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then file values override defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.Input, convey.ShouldEqual, "data/matches.csv")
			convey.So(cfg.InputFormat, convey.ShouldEqual, "fbref")
			convey.So(cfg.GroupBy, convey.ShouldResemble, []string{"team_id"})
			convey.So(cfg.Standardize, convey.ShouldBeFalse)
			convey.So(cfg.Weights["w_g"], convey.ShouldEqual, 1.5)
			convey.So(cfg.Weights["w_ti"], convey.ShouldEqual, 0.2)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
		})
	})
}

func TestLoadEnvOverFile(t *testing.T) {
	t.Setenv(config.EnvFile, writeConfigFile(t, fileConfig))
	t.Setenv("PELE_ADDR", ":7070")
	t.Setenv("PELE_MAX_LIMIT", "25")
	t.Setenv("PELE_WEIGHTS__W_G", "2")

	convey.Convey("Given a YAML file and environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then environment variables win", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 25)
			convey.So(cfg.Weights["w_g"], convey.ShouldEqual, 2.0)
			convey.So(cfg.Weights["w_ti"], convey.ShouldEqual, 0.2)
		})
	})
}

func TestLoadEnvList(t *testing.T) {
	t.Setenv(config.EnvFile, "")
	t.Setenv("PELE_GROUP_BY", "team_id,season")
	t.Setenv("PELE_CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PELE_METRICS_BUCKETS", "0.5,0.05")

	convey.Convey("Given comma separated lists in the environment", t, func() {
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then group_by replaces the default list", func() {
			convey.So(cfg.GroupBy, convey.ShouldResemble, []string{"team_id", "season"})
		})

		convey.Convey("Then origins are trimmed and empty items dropped", func() {
			convey.So(cfg.CORSAllowOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
		})

		convey.Convey("Then numeric lists decode as numbers", func() {
			convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{0.5, 0.05})
		})
	})

	convey.Convey("Given a list with an unknown group field", t, func() {
		t.Setenv("PELE_GROUP_BY", "team_id,league")
		_, err := config.Load(context.Background())

		convey.Convey("Then each item is validated on its own", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "league")
		})
	})
}

func TestLoadMetricsSettings(t *testing.T) {
	t.Setenv(config.EnvFile, writeConfigFile(t, `
metrics_namespace: scores
metrics_labels:
  deployment: eu
metrics_run_buckets: [1, 10]
`))
	t.Setenv("PELE_METRICS_ENABLED", "false")

	convey.Convey("Given metrics settings in a file and the environment", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then both layers apply", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "scores")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "engine")
			convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"deployment": "eu"})
			convey.So(cfg.MetricsRunBuckets, convey.ShouldResemble, []float64{1, 10})
		})
	})
}

func TestLoadErrors(t *testing.T) {
	convey.Convey("Given an unknown weight name", t, func() {
		t.Setenv(config.EnvFile, "")
		t.Setenv("PELE_WEIGHTS__W_SHOTS", "1")
		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails as invalid", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a missing config file", t, func() {
		t.Setenv(config.EnvFile, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails to load", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}

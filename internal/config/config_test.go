package config_test

import (
	"errors"
	"testing"

	"github.com/okian/pele/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.InputFormat, convey.ShouldEqual, "canonical")
			convey.So(cfg.GroupBy, convey.ShouldResemble, []string{"season"})
			convey.So(cfg.Standardize, convey.ShouldBeTrue)
			convey.So(cfg.MinutesPower, convey.ShouldEqual, 2.0)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 500)
			convey.So(cfg.RoundDigits, convey.ShouldEqual, 3)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "pele")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"input format", func(c *config.Config) { c.InputFormat = "xlsx" }},
			{"group field", func(c *config.Config) { c.GroupBy = []string{"league"} }},
			{"weight name", func(c *config.Config) { c.Weights = map[string]float64{"w_shots": 1} }},
			{"minutes power", func(c *config.Config) { c.MinutesPower = 0 }},
			{"max limit", func(c *config.Config) { c.MaxLimit = 0 }},
			{"round digits", func(c *config.Config) { c.RoundDigits = -1 }},
			{"rate limit", func(c *config.Config) { c.RateLimitEnabled = true; c.RateLimitRequests = 0 }},
			{"metrics namespace", func(c *config.Config) { c.MetricsNamespace = "" }},
			{"metrics bucket", func(c *config.Config) { c.MetricsRunBuckets = []float64{1, 0} }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sample returns the value of the first series of name whose labels include
// want, and whether one exists.
func sample(reg prometheus.Gatherer, name string, want map[string]string) (float64, bool) {
	families, err := reg.Gather()
	if err != nil {
		return 0, false
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue(), true
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue(), true
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount()), true
			}
		}
	}
	return 0, false
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("pipeline"),
				WithHistogramBuckets([]float64{0.01, 0.1, 1}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithRunBuckets([]float64{5, 1}),
				WithPrometheusRegistry(registry),
			)
			manager.groupsScored.Set(3)

			Convey("Then the collectors carry the namespace and labels", func() {
				v, ok := sample(registry, "test_pipeline_groups_scored", map[string]string{"env": "test"})
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 3)
			})

			Convey("Then the run histogram uses its own sorted buckets", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var bounds []float64
				for _, f := range families {
					if f.GetName() == "test_pipeline_pipeline_duration_seconds" {
						for _, b := range f.GetMetric()[0].GetHistogram().GetBucket() {
							bounds = append(bounds, b.GetUpperBound())
						}
					}
				}
				So(bounds, ShouldResemble, []float64{1, 5})
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		reg := GetRegistry()

		Convey("When a run is recorded", func() {
			before, _ := sample(reg, "pele_engine_pipeline_runs_total", map[string]string{"outcome": "success"})
			RecordPipelineRun("success", 0.25)
			RecordRecordsIngested(120)
			UpdateGroupsScored(12)
			UpdateLastRun(time.Unix(1700000000, 0))

			Convey("Then counters and gauges move", func() {
				after, _ := sample(reg, "pele_engine_pipeline_runs_total", map[string]string{"outcome": "success"})
				So(after, ShouldEqual, before+1)
				groups, _ := sample(reg, "pele_engine_groups_scored", nil)
				So(groups, ShouldEqual, 12)
				last, _ := sample(reg, "pele_engine_last_run_timestamp_seconds", nil)
				So(last, ShouldEqual, 1700000000)
			})
		})

		Convey("When warnings and schema errors are recorded", func() {
			RecordWarning("zero_variance")
			RecordSchemaError("minutes")
			RecordError("api", "bad_request")

			Convey("Then they are labelled", func() {
				w, ok := sample(reg, "pele_engine_degenerate_warnings_total", map[string]string{"kind": "zero_variance"})
				So(ok, ShouldBeTrue)
				So(w, ShouldBeGreaterThanOrEqualTo, 1)
				_, ok = sample(reg, "pele_engine_schema_errors_total", map[string]string{"field": "minutes"})
				So(ok, ShouldBeTrue)
				_, ok = sample(reg, "pele_engine_errors_total", map[string]string{"component": "api", "type": "bad_request"})
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When HTTP requests are recorded", func() {
			RecordHTTPRequest("/api/v1/players", "GET", 200, 0.002)
			RecordStoreOperation("search", 0.0001)
			UpdateStoredPlayers(7)

			Convey("Then the registry exposes them", func() {
				n, ok := sample(reg, "pele_engine_http_requests_total",
					map[string]string{"route": "/api/v1/players", "method": "GET", "status_code": "200"})
				So(ok, ShouldBeTrue)
				So(n, ShouldBeGreaterThanOrEqualTo, 1)
				d, ok := sample(reg, "pele_engine_store_operation_duration_seconds", map[string]string{"operation": "search"})
				So(ok, ShouldBeTrue)
				So(d, ShouldBeGreaterThanOrEqualTo, 1)
				stored, _ := sample(reg, "pele_engine_stored_players", nil)
				So(stored, ShouldEqual, 7)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		saved := globalManager.Load()
		Configure(WithMetricsEnabled(false))
		defer globalManager.Store(saved)
		registry := GetRegistry()

		Convey("When recording", func() {
			RecordPipelineRun("success", 1)
			RecordHTTPRequest("/healthz", "GET", 200, 0.001)

			Convey("Then no labelled series is created", func() {
				_, ok := sample(registry, "pele_engine_pipeline_runs_total", map[string]string{"outcome": "success"})
				So(ok, ShouldBeFalse)
				_, ok = sample(registry, "pele_engine_http_requests_total", nil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a reconfigured global manager", t, func() {
		saved := globalManager.Load()
		Configure(
			WithNamespace("scores"),
			WithSubsystem("api"),
			WithCustomLabels(map[string]string{"deployment": "eu"}),
			WithHistogramBuckets([]float64{0.5, 0.05}),
		)
		defer globalManager.Store(saved)

		Convey("When a request is recorded", func() {
			RecordHTTPRequest("/api/v1/players", "GET", 200, 0.01)
			reg := GetRegistry()

			Convey("Then the new registry exposes it under the new names", func() {
				So(reg, ShouldNotEqual, saved.gatherer)
				n, ok := sample(reg, "scores_api_http_requests_total",
					map[string]string{"deployment": "eu", "status_code": "200"})
				So(ok, ShouldBeTrue)
				So(n, ShouldEqual, 1)
				_, ok = sample(reg, "pele_engine_http_requests_total", nil)
				So(ok, ShouldBeFalse)
			})

			Convey("Then the previous registry is left untouched", func() {
				_, ok := sample(saved.gatherer, "scores_api_http_requests_total", nil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

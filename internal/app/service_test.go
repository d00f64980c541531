package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	service "github.com/okian/pele/internal/app"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/internal/sample"
	"github.com/okian/pele/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubSource returns fixed records or an error.
type stubSource struct {
	mu      sync.Mutex
	records []model.MatchRecord
	err     error
}

func (s *stubSource) Load(context.Context) ([]model.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.err
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) set(records []model.MatchRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records, s.err = records, err
}

func record(player, match string, minutes, goals float64) model.MatchRecord {
	r := model.MatchRecord{PlayerID: player, MatchID: match, Season: "2024", TeamID: "T", Minutes: minutes}
	r.Counts[model.NPGoals] = goals
	r.Counts[model.XG] = goals
	return r
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started and reports default weights", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Weights(), ShouldResemble, pele.DefaultWeights())
			_, ok := svc.LastRun()
			So(ok, ShouldBeFalse)
		})

		Convey("Then scoring before start fails", func() {
			_, err := svc.Score(context.Background(), nil, service.ScoreOptions{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_StartWithoutSource(t *testing.T) {
	Convey("Given a service without a source", t, func() {
		svc := service.New(service.WithEngineOptions(pele.WithWeightOverrides(map[string]float64{"w_g": 2})))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then recompute has nothing to load", func() {
			_, err := svc.Recompute(ctx)
			So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
		})

		Convey("Then the effective weights include the overrides", func() {
			So(svc.Weights().Goals, ShouldEqual, 2.0)
		})

		Convey("When scoring an ad-hoc payload", func() {
			records := []model.MatchRecord{record("a", "m1", 90, 1), record("b", "m1", 90, 0)}
			off := false
			res, err := svc.Score(ctx, records, service.ScoreOptions{Standardize: &off})

			Convey("Then the payload is scored with the service weights", func() {
				So(err, ShouldBeNil)
				So(len(res.Players), ShouldEqual, 2)
				So(res.Players[0].Key.PlayerID, ShouldEqual, "a")
				So(res.Players[0].OC-res.Players[1].OC, ShouldAlmostEqual, 2.0, 1e-9)
				So(res.Players[0].Pele100, ShouldBeNil)
				So(svc.Store().Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When scoring with an unknown weight", func() {
			_, err := svc.Score(ctx, nil, service.ScoreOptions{Weights: map[string]float64{"w_nope": 1}})
			So(errors.Is(err, pele.ErrUnknownWeight), ShouldBeTrue)
		})

		Convey("When scoring with an unknown group field", func() {
			_, err := svc.Score(ctx, nil, service.ScoreOptions{GroupBy: []string{"league"}})
			So(errors.Is(err, model.ErrInvalidGroupKey), ShouldBeTrue)
		})
	})
}

func TestService_Recompute(t *testing.T) {
	Convey("Given a service over sample data", t, func() {
		ctx := context.Background()
		src := sample.Source{Config: sample.Config{Players: 5, Matches: 3, Seasons: []string{"2023", "2024"}, Seed: 3}}
		svc := service.New(
			service.WithSource(src),
			service.WithEngineOptions(pele.WithGroupBy("season")),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the first run is stored", func() {
			info, ok := svc.LastRun()
			So(ok, ShouldBeTrue)
			So(info.RunID, ShouldNotBeEmpty)
			So(info.Records, ShouldEqual, 30)
			So(info.Groups, ShouldEqual, 10)
			So(info.GroupBy, ShouldResemble, []string{"player_id", "season"})
			So(svc.Store().Count(ctx), ShouldEqual, 10)
			So(svc.GetStats()["lastRunID"], ShouldEqual, info.RunID)
		})

		Convey("When recomputing again", func() {
			first, _ := svc.LastRun()
			info, err := svc.Recompute(ctx)

			Convey("Then a new run replaces the old one", func() {
				So(err, ShouldBeNil)
				So(info.RunID, ShouldNotEqual, first.RunID)
				So(info.Mean, ShouldAlmostEqual, first.Mean, 1e-9)
			})
		})
	})
}

func TestService_FailedRunKeepsOutput(t *testing.T) {
	Convey("Given a started service with stored output", t, func() {
		ctx := context.Background()
		src := &stubSource{records: []model.MatchRecord{record("a", "m1", 90, 1), record("b", "m1", 45, 0)}}
		svc := service.New(service.WithSource(src))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		before, _ := svc.LastRun()

		Convey("When the source fails", func() {
			src.set(nil, errors.New("disk gone"))
			_, err := svc.Recompute(ctx)

			Convey("Then the error surfaces and the output stays", func() {
				So(err, ShouldNotBeNil)
				So(svc.Store().Count(ctx), ShouldEqual, 2)
				after, _ := svc.LastRun()
				So(after.RunID, ShouldEqual, before.RunID)
			})
		})

		Convey("When the source yields a schema violation", func() {
			src.set([]model.MatchRecord{{PlayerID: "a", Minutes: 90}}, nil)
			_, err := svc.Recompute(ctx)

			Convey("Then the run aborts with a schema error", func() {
				So(errors.Is(err, pele.ErrSchema), ShouldBeTrue)
				So(svc.Store().Count(ctx), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a source that fails on the first run", t, func() {
		svc := service.New(service.WithSource(&stubSource{err: errors.New("missing file")}))

		Convey("Then Start fails and leaves the service stopped", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Refresh(t *testing.T) {
	Convey("Given a service refreshing every few milliseconds", t, func() {
		ctx := context.Background()
		src := &stubSource{records: []model.MatchRecord{record("a", "m1", 90, 1)}}
		svc := service.New(
			service.WithLogger(logger.Discard()),
			service.WithSource(src),
			service.WithRefreshInterval(5*time.Millisecond),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		So(svc.Store().Count(ctx), ShouldEqual, 1)

		Convey("When the source gains a player", func() {
			src.set([]model.MatchRecord{record("a", "m1", 90, 1), record("b", "m1", 90, 0)}, nil)

			Convey("Then the stored output follows without an explicit recompute", func() {
				deadline := time.Now().Add(2 * time.Second)
				for svc.Store().Count(ctx) != 2 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(svc.Store().Count(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service twice", func() {
			svc.Stop()
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

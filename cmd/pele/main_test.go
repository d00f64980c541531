package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pele/internal/adapters/export"
	"github.com/okian/pele/internal/adapters/importer"
	"github.com/okian/pele/internal/config"
	"github.com/okian/pele/pkg/metrics"
)

const fbrefFixture = `,,,,Playing Time,Performance,Performance,Performance,Expected,Expected
Player,Season,Team,-additional,Min,G-PK,PK,Ast,xG,xAG
Bukayo Saka,2023-2024,Arsenal,bc7dc64d,2890,14,2,9,11.5,10.1
Declan Rice,2023-2024,Arsenal,,3200,7,0,8,4.2,5.5
`

// execute runs a fresh root command and returns its stdout.
func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvFile, "")
	t.Setenv("PELE_INPUT", "")
	t.Setenv("PELE_LOG_LEVEL", "error")
}

func TestParseWeights(t *testing.T) {
	Convey("Given weight flags", t, func() {
		Convey("When they are well formed", func() {
			w, err := parseWeights([]string{"w_g=1.5", " W_TI = 0.2 "})
			So(err, ShouldBeNil)
			So(w, ShouldResemble, map[string]float64{"w_g": 1.5, "w_ti": 0.2})
		})

		Convey("When a pair has no value", func() {
			_, err := parseWeights([]string{"w_g"})
			So(err, ShouldNotBeNil)
		})

		Convey("When the value is not a number", func() {
			_, err := parseWeights([]string{"w_g=high"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSampleScoreExport(t *testing.T) {
	isolateEnv(t)

	Convey("Given sample records written by the sample command", t, func() {
		dir := t.TempDir()
		input := filepath.Join(dir, "matches.csv")
		_, err := execute("sample", "--players", "6", "--matches", "3", "--seed", "5", "--output", input)
		So(err, ShouldBeNil)

		f, err := os.Open(input)
		So(err, ShouldBeNil)
		records, err := importer.ReadCanonical(f)
		f.Close()
		So(err, ShouldBeNil)
		So(len(records), ShouldEqual, 36)

		Convey("When scored to CSV by season", func() {
			out := filepath.Join(dir, "pele.csv")
			_, err := execute("score", "-i", input, "-g", "season", "-o", out)
			So(err, ShouldBeNil)

			Convey("Then the file has the ordered columns and one row per group", func() {
				f, err := os.Open(out)
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := csv.NewReader(f).ReadAll()
				So(err, ShouldBeNil)
				So(len(rows), ShouldBeGreaterThan, 1)
				So(rows[0][0], ShouldEqual, "player_id")
				So(rows[0][len(rows[0])-1], ShouldEqual, "pele_100")
			})
		})

		Convey("When scored to JSON without standardization", func() {
			out := filepath.Join(dir, "pele.json")
			_, err := execute("score", "-i", input, "--standardize=false", "-o", out)
			So(err, ShouldBeNil)

			Convey("Then every row carries pele_raw and no pele_100", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var rows []map[string]any
				So(json.Unmarshal(data, &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 12)
				for _, r := range rows {
					So(r, ShouldContainKey, "pele_raw")
					So(r, ShouldNotContainKey, "pele_100")
				}
			})
		})

		Convey("When scored to a table with a weight override", func() {
			table, err := execute("score", "-i", input, "-w", "w_g=2", "--top", "3")
			So(err, ShouldBeNil)
			So(table, ShouldContainSubstring, "pele_raw")
			So(table, ShouldContainSubstring, "pele_100")
		})

		Convey("When a weight is unknown", func() {
			_, err := execute("score", "-i", input, "-w", "w_nope=1")
			So(err, ShouldNotBeNil)
		})

		Convey("When the output extension is unsupported", func() {
			_, err := execute("score", "-i", input, "-o", filepath.Join(dir, "pele.xml"))
			So(err, ShouldNotBeNil)
		})

		Convey("When exported for the web", func() {
			web := filepath.Join(dir, "web")
			_, err := execute("export", "web", "-i", input, "--dir", web)
			So(err, ShouldBeNil)

			Convey("Then players and filters files exist", func() {
				_, err := os.Stat(filepath.Join(web, export.PlayersFile))
				So(err, ShouldBeNil)
				data, err := os.ReadFile(filepath.Join(web, export.FiltersFile))
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "2024-2025")
			})
		})
	})

	Convey("Given no input", t, func() {
		_, err := execute("score")
		So(errors.Is(err, config.ErrNoInput), ShouldBeTrue)
	})
}

func TestImportFBref(t *testing.T) {
	isolateEnv(t)

	Convey("Given an FBref export on disk", t, func() {
		dir := t.TempDir()
		in := filepath.Join(dir, "fbref.csv")
		So(os.WriteFile(in, []byte(fbrefFixture), 0o600), ShouldBeNil)

		Convey("When converted to a file", func() {
			out := filepath.Join(dir, "matches.csv")
			_, err := execute("import", "fbref", in, "--output", out)
			So(err, ShouldBeNil)

			Convey("Then the output reads back as canonical records", func() {
				f, err := os.Open(out)
				So(err, ShouldBeNil)
				defer f.Close()
				records, err := importer.ReadCanonical(f)
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(records[1].PlayerID, ShouldEqual, "Declan Rice")
			})
		})

		Convey("When converted to stdout", func() {
			out, err := execute("import", "fbref", in)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "bc7dc64d")
		})

		Convey("When the file is missing", func() {
			_, err := execute("import", "fbref", filepath.Join(dir, "nope.csv"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMetricsSettings(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PELE_METRICS_NAMESPACE", "scores")
	t.Setenv("PELE_METRICS_LABELS__DEPLOYMENT", "eu")
	t.Setenv("PELE_METRICS_RUN_BUCKETS", "1, 10")

	Convey("Given metrics settings in the environment", t, func() {
		_, err := execute("sample", "--players", "2", "--matches", "1")
		So(err, ShouldBeNil)

		Convey("Then the global registry uses them", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() != "scores_engine_groups_scored" {
					continue
				}
				found = true
				labels := f.GetMetric()[0].GetLabel()
				So(len(labels), ShouldEqual, 1)
				So(labels[0].GetName(), ShouldEqual, "deployment")
				So(labels[0].GetValue(), ShouldEqual, "eu")
			}
			So(found, ShouldBeTrue)
		})
	})

	Convey("Given a non-positive bucket bound", t, func() {
		t.Setenv("PELE_METRICS_BUCKETS", "0.1,-1")
		_, err := execute("sample", "--players", "2", "--matches", "1")
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}

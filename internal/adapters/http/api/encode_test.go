package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteJSON(t *testing.T) {
	Convey("Given a value JSON cannot represent", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, map[string]float64{"pele_raw": math.Inf(1)})

		Convey("Then the response is a well-formed 500", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			var body errorResponse
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Code, ShouldEqual, "internal_error")
		})
	})

	Convey("Given an encodable value", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]int{"n": 1})

		Convey("Then status and body are written as given", func() {
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldEqual, "{\"n\":1}\n")
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
		})
	})
}

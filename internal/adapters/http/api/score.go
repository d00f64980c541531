package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/pele/internal/adapters/importer"
	service "github.com/okian/pele/internal/app"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
)

// ScoreHandler scores ad-hoc payloads.
type ScoreHandler struct {
	scorer       Scorer
	maxBodyBytes int64
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(scorer Scorer, maxBodyBytes int64) *ScoreHandler {
	return &ScoreHandler{scorer: scorer, maxBodyBytes: maxBodyBytes}
}

// scoreRequest mirrors the OpenAPI schema for POST /api/v1/score.
type scoreRequest struct {
	Records     []importer.Object  `json:"records"`
	GroupBy     []string           `json:"group_by"`
	Standardize *bool              `json:"standardize"`
	Weights     map[string]float64 `json:"weights"`
}

type scoreResponse struct {
	Players      []model.ScoredPlayer `json:"players"`
	Warnings     []pele.Warning       `json:"warnings"`
	AvgMinutes   float64              `json:"avg_minutes"`
	Mean         float64              `json:"pele_raw_mean"`
	StdDev       float64              `json:"pele_raw_std"`
	Standardized bool                 `json:"standardized"`
}

// HandleScore handles POST /api/v1/score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req scoreRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	records, err := importer.DecodeRecords(req.Records)
	if err != nil {
		writeFailure(w, err)
		return
	}
	res, err := h.scorer.Score(r.Context(), records, service.ScoreOptions{
		GroupBy:     req.GroupBy,
		Standardize: req.Standardize,
		Weights:     req.Weights,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []pele.Warning{}
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		Players:      res.Players,
		Warnings:     warnings,
		AvgMinutes:   res.AvgMinutes,
		Mean:         res.Mean,
		StdDev:       res.StdDev,
		Standardized: res.Standardized,
	})
}

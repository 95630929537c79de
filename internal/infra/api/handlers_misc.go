// File: internal/infra/api/handlers_misc.go
package api

import (
	"net/http"

	"prime-fitness-backend/internal/domain/model"
)

type aiPlanRequest struct {
	Goal      string `json:"goal"`
	Level     string `json:"level"`
	DaysCount int    `json:"days_count,omitempty"`
}

func (s *Server) handleAIPlan(w http.ResponseWriter, r *http.Request) {
	var req aiPlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	plan, err := s.aiUC.Generate(r.Context(), userID(r), req.Goal, req.Level, req.DaysCount)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

type analyticsIngestRequest struct {
	Events []*model.AnalyticsEvent `json:"events"`
}

func (s *Server) handleAnalyticsIngest(w http.ResponseWriter, r *http.Request) {
	var req analyticsIngestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	uid := userID(r)
	accepted, err := s.analyticsUC.Ingest(r.Context(), &uid, req.Events)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": accepted})
}

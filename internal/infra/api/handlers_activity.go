// File: internal/infra/api/handlers_activity.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prime-fitness-backend/internal/domain/model"
)

type workoutStartRequest struct {
	Source       string  `json:"source"`
	WorkoutRefID *string `json:"workout_ref_id,omitempty"`
}

func (s *Server) handleWorkoutStart(w http.ResponseWriter, r *http.Request) {
	var req workoutStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	run, err := s.activityUC.StartWorkout(r.Context(), userID(r), req.Source, req.WorkoutRefID)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

type workoutCompleteRequest struct {
	TotalSeconds int     `json:"total_seconds"`
	Calories     float64 `json:"calories"`
	Stars        *int    `json:"stars,omitempty"`
}

func (s *Server) handleWorkoutComplete(w http.ResponseWriter, r *http.Request) {
	var req workoutCompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	run, err := s.activityUC.CompleteWorkout(r.Context(), userID(r), chi.URLParam(r, "id"), req.TotalSeconds, req.Calories, req.Stars)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type meditationStartRequest struct {
	Type         string  `json:"type"`
	MeditationID *string `json:"meditation_id,omitempty"`
}

func (s *Server) handleMeditationStart(w http.ResponseWriter, r *http.Request) {
	var req meditationStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	run, err := s.activityUC.StartMeditation(r.Context(), userID(r), model.MeditationType(req.Type), req.MeditationID)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

type meditationCompleteRequest struct {
	TotalSeconds int `json:"total_seconds"`
}

func (s *Server) handleMeditationComplete(w http.ResponseWriter, r *http.Request) {
	var req meditationCompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	run, err := s.activityUC.CompleteMeditation(r.Context(), userID(r), chi.URLParam(r, "id"), req.TotalSeconds)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	items, err := s.achUC.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": items})
}

func (s *Server) handleWeeklyFocus(w http.ResponseWriter, r *http.Request) {
	summary, err := s.weeklyUC.Summary(r.Context(), userID(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// File: internal/infra/api/handlers_engagement.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"prime-fitness-backend/internal/domain/model"
)

type reminderCreateRequest struct {
	Type     string `json:"type"`
	TimeHHMM string `json:"time"`
	Weekdays []int  `json:"weekdays,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

func (s *Server) handleReminderCreate(w http.ResponseWriter, r *http.Request) {
	var req reminderCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	rem, err := s.remUC.Create(r.Context(), userID(r), model.ReminderType(req.Type), req.TimeHHMM, req.Weekdays, req.Timezone)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

type reminderPatchRequest struct {
	Enabled  *bool   `json:"enabled,omitempty"`
	TimeHHMM *string `json:"time,omitempty"`
	Weekdays []int   `json:"weekdays,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

func (s *Server) handleReminderPatch(w http.ResponseWriter, r *http.Request) {
	var req reminderPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	rem, err := s.remUC.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Enabled, req.TimeHHMM, req.Weekdays, req.Timezone)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (s *Server) handleReminderDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.remUC.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReminderList(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.remUC.ListByUser(r.Context(), userID(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reminders": reminders})
}

type pushRegisterRequest struct {
	Provider string `json:"provider"`
	Platform string `json:"platform"`
	Token    string `json:"token"`
	DeviceID string `json:"device_id,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

func (s *Server) handlePushRegister(w http.ResponseWriter, r *http.Request) {
	var req pushRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	token, err := s.remUC.RegisterToken(r.Context(), userID(r), model.PushProvider(req.Provider), req.Platform, req.Token, req.DeviceID, req.Locale, req.Timezone)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

type pushUnregisterRequest struct {
	Token string `json:"token"`
}

func (s *Server) handlePushUnregister(w http.ResponseWriter, r *http.Request) {
	var req pushUnregisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	if err := s.remUC.UnregisterToken(r.Context(), userID(r), req.Token); err != nil {
		respondError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReminderSweep triggers one sweep pass on demand; the scheduler
// runs the same path on its interval.
func (s *Server) handleReminderSweep(w http.ResponseWriter, r *http.Request) {
	sent, err := s.remUC.Sweep(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

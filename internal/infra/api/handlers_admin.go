// File: internal/infra/api/handlers_admin.go
package api

import (
	"net/http"
	"time"

	"prime-fitness-backend/internal/domain/model"
)

type planCreateRequest struct {
	Code         string                     `json:"code"`
	DurationDays int                        `json:"duration_days"`
	Prices       map[string]model.PlanPrice `json:"prices"`
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	plan, err := s.planUC.Create(r.Context(), req.Code, req.DurationDays, req.Prices)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

type promoCreateRequest struct {
	Code         string     `json:"code"`
	DurationDays int        `json:"duration_days"`
	MaxUses      int        `json:"max_uses"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (s *Server) handlePromoCreate(w http.ResponseWriter, r *http.Request) {
	var req promoCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	promo, err := s.promoAdminUC.Create(r.Context(), req.Code, req.DurationDays, req.MaxUses, req.ExpiresAt)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

type promoBatchCreateRequest struct {
	Name           string `json:"name"`
	DurationDays   int    `json:"duration_days"`
	MaxUsesPerCode int    `json:"max_uses_per_code"`
	CodesCount     int    `json:"codes_count"`
	CodeLength     int    `json:"code_length,omitempty"`
}

func (s *Server) handlePromoBatchCreate(w http.ResponseWriter, r *http.Request) {
	var req promoBatchCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	batch, created, err := s.promoAdminUC.CreateBatch(r.Context(), req.Name, req.DurationDays, req.MaxUsesPerCode, req.CodesCount, req.CodeLength)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"batch":         batch,
		"codes_created": created,
	})
}

func (s *Server) handlePromoList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var status *model.PromoStatus
	if raw := q.Get("status"); raw != "" {
		st := model.PromoStatus(raw)
		status = &st
	}
	offset, limit := pagination(r)
	promos, total, err := s.promoAdminUC.List(r.Context(), status, q.Get("q"), offset, limit)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"promo_codes": promos,
		"total":       total,
	})
}

func (s *Server) handlePromoStats(w http.ResponseWriter, r *http.Request) {
	codes, redeemed, err := s.promoAdminUC.Stats(r.Context(), r.URL.Query().Get("promo_code_id"))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"codes_total":       codes,
		"redemptions_total": redeemed,
	})
}

// File: internal/infra/api/handlers_subscription.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/domain/model"
)

func (s *Server) handleSubscriptionGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.subUC.GetSubscription(r.Context(), userID(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type purchaseInitRequest struct {
	PlanCode string                 `json:"plan_code"`
	Source   string                 `json:"source"`
	Amount   *float64               `json:"amount,omitempty"`
	Currency *string                `json:"currency,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

func (s *Server) handlePurchaseInit(w http.ResponseWriter, r *http.Request) {
	var req purchaseInitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	txn, view, err := s.subUC.PurchaseInit(r.Context(), userID(r), req.PlanCode, model.SubscriptionSource(req.Source), req.Amount, req.Currency, req.Meta)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction":  txn,
		"subscription": view,
	})
}

type purchaseVerifyRequest struct {
	TransactionID string                 `json:"transaction_id"`
	Provider      string                 `json:"provider"`
	Receipt       map[string]interface{} `json:"receipt"`
	ProviderTxID  string                 `json:"provider_tx_id,omitempty"`
}

func (s *Server) handlePurchaseVerify(w http.ResponseWriter, r *http.Request) {
	var req purchaseVerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	view, err := s.subUC.VerifyPurchase(r.Context(), userID(r), req.TransactionID, req.Provider, req.Receipt, req.ProviderTxID)
	if err != nil {
		// A plan gone missing at verify time is a rejected request, not a
		// missing resource; the transaction is already marked failed.
		if errors.Is(err, domain.ErrPlanNotFound) {
			writeError(w, http.StatusBadRequest, domain.ErrPlanNotFound.Code, domain.ErrPlanNotFound.Message)
			return
		}
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type activatePromoRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleActivatePromo(w http.ResponseWriter, r *http.Request) {
	var req activatePromoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	view, err := s.subUC.ActivatePromo(r.Context(), userID(r), req.Code)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.subUC.Cancel(r.Context(), userID(r)); err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"canceled": true})
}

func (s *Server) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	ent, err := s.subUC.Entitlement(r.Context(), userID(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

type webhookRequest struct {
	TransactionID string                 `json:"transaction_id"`
	Status        string                 `json:"status"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, s.log, err)
		return
	}
	if err := s.subUC.WebhookConfirm(r.Context(), req.TransactionID, req.Status, req.Payload); err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	plans, total, err := s.planUC.List(r.Context(), model.PlanStatusActive, offset, limit)
	if err != nil {
		respondError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plans": plans,
		"total": total,
	})
}

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

func (h *Handler) consultation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	identityID, ok := utils.GetIdentityIDFromContext(ctx)
	if !ok {
		writeErrorMessage(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.ConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	reading, err := h.services.ConsultService.Consult(ctx, identityID, req)
	if err != nil {
		log.Err(err).Str("topic", req.Topic).Msg("consultation failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.ConsultationResponse{Success: true, Reading: reading}, http.StatusOK)
}

func (h *Handler) paymentLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.PaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	link, err := h.services.ConsultService.CreatePaymentLink(ctx, req)
	if err != nil {
		log.Err(err).Str("plan", req.PlanKey).Msg("payment link request failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.PaymentLinkResponse{Success: true, Link: link}, http.StatusOK)
}

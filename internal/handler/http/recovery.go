package http

import (
	"encoding/json"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

func (h *Handler) passphraseRecovery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.IdentityService.RequestPassphraseRecovery(ctx, req); err != nil {
		log.Err(err).Msg("recovery request rejected")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.OKResponse{Success: true}, http.StatusOK)
}

func (h *Handler) verifyRecoveryToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		writeErrorMessage(w, "missing token", http.StatusBadRequest)
		return
	}

	holder, err := h.services.IdentityService.VerifyRecoveryToken(ctx, req.Token)
	if err != nil {
		log.Err(err).Msg("recovery token check failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.VerifyResponse{
		Success: true,
		User:    models.PublicUserFrom(holder),
	}, http.StatusOK)
}

func (h *Handler) updatePassphrase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.UpdatePassphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.NewPassphrase == "" {
		writeErrorMessage(w, "missing token or new passphrase", http.StatusBadRequest)
		return
	}

	if err := h.services.IdentityService.UpdatePassphrase(ctx, req.Token, req.NewPassphrase); err != nil {
		log.Err(err).Msg("passphrase update failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.OKResponse{Success: true}, http.StatusOK)
}

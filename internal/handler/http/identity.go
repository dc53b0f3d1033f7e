package http

import (
	"encoding/json"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	saved, err := h.services.IdentityService.Register(ctx, req.Identity())
	if err != nil {
		log.Err(err).Str("email", req.Email).Msg("registration failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.RegisterResponse{
		Success: true,
		Data:    models.RegisterData{Email: saved.Email, IsVerified: saved.IsVerified},
	}, http.StatusOK)
}

func (h *Handler) sendMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	link, expiresAt, err := h.services.IdentityService.RequestVerification(ctx, req.Identity())
	if err != nil {
		log.Err(err).Str("email", req.Email).Msg("magic link request failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.MagicLinkResponse{
		Success:      true,
		MagicLinkURL: link,
		ExpiresAt:    expiresAt,
	}, http.StatusOK)
}

func (h *Handler) verifyMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	token := r.URL.Query().Get("token")
	if token == "" {
		writeErrorMessage(w, "missing token", http.StatusBadRequest)
		return
	}

	verified, err := h.services.IdentityService.ConsumeVerificationToken(ctx, token)
	if err != nil {
		log.Err(err).Msg("magic link verification failed")
		writeError(w, err)
		return
	}

	log.Debug().Str("email", verified.Email).Msg("identity verified")

	utils.WriteJSON(w, models.VerifyResponse{
		Success: true,
		User:    models.PublicUserFrom(verified),
	}, http.StatusOK)
}

func (h *Handler) setPassphrase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req struct {
		Email      string `json:"email"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.IdentityService.SetPassphrase(ctx, req.Email, req.Passphrase); err != nil {
		log.Err(err).Str("email", req.Email).Msg("passphrase set failed")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.OKResponse{Success: true}, http.StatusOK)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.IdentityService.Withdraw(ctx, req.Email); err != nil {
		log.Err(err).Str("email", req.Email).Msg("withdrawal failed")
		writeError(w, err)
		return
	}

	log.Info().Str("email", req.Email).Msg("identity withdrawn")

	utils.WriteJSON(w, models.OKResponse{Success: true}, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		logger.FromRequest(r).Err(err).Msg("storage ping failed")
		writeErrorMessage(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, models.OKResponse{Success: true}, http.StatusOK)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	token, err := h.services.AdminService.Login(ctx, req.Login, req.Passphrase)
	if err != nil {
		log.Err(err).Str("login", req.Login).Msg("admin login rejected")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.AdminLoginResponse{Success: true, Token: token}, http.StatusOK)
}

func (h *Handler) adminIdentities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	identities, err := h.services.AdminService.ListIdentities(ctx)
	if err != nil {
		log.Err(err).Msg("identity listing failed")
		writeError(w, err)
		return
	}

	listed := make([]models.PublicUser, 0, len(identities))
	for _, identity := range identities {
		listed = append(listed, models.PublicUserFrom(identity))
	}

	utils.WriteJSON(w, models.AdminIdentitiesResponse{
		Success:    true,
		Identities: listed,
		Length:     len(listed),
	}, http.StatusOK)
}

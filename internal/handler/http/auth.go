package http

import (
	"encoding/json"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeErrorMessage(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	identity, err := h.services.AuthService.Login(ctx, req)
	if err != nil {
		log.Err(err).Str("nickname", req.Nickname).Msg("login rejected")
		writeError(w, err)
		return
	}

	log.Debug().Str("id", identity.ID).Msg("identity logged in")

	http.SetCookie(w, h.sessionCookie(identity.ID))

	utils.WriteJSON(w, models.LoginResponse{
		Success:  true,
		UserData: models.PublicUserFrom(identity),
	}, http.StatusOK)
}

// sessionCookie builds the login session cookie. The value is the
// identity's stable identifier; the cookie is unreadable from scripts and
// never crosses sites.
func (h *Handler) sessionCookie(identityID string) *http.Cookie {
	return &http.Cookie{
		Name:     h.sessionCookieName,
		Value:    identityID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

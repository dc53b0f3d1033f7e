package http

import (
	"errors"
	"net/http"

	"github.com/hoshinolab/fortune-gate/internal/service"
	"github.com/hoshinolab/fortune-gate/internal/store"
	"github.com/hoshinolab/fortune-gate/internal/utils"
	"github.com/hoshinolab/fortune-gate/models"
)

// errorStatusMap translates the sentinel errors of the lower layers into
// HTTP status codes. Expired and already-used tokens share 410 so a caller
// cannot learn that a consumed token once existed. Anything unmapped is a
// dependency failure and surfaces as 500 with a generic message.
var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:            http.StatusBadRequest,
	service.ErrEmailAlreadyRegistered:         http.StatusConflict,
	service.ErrIdentityNotFound:               http.StatusNotFound,
	service.ErrTokenNotFound:                  http.StatusNotFound,
	service.ErrTokenExpired:                   http.StatusGone,
	service.ErrTokenAlreadyUsed:               http.StatusGone,
	service.ErrPassphraseRequiresVerification: http.StatusConflict,
	service.ErrAuthenticationFailed:           http.StatusUnauthorized,

	store.ErrEmailAlreadyExists:  http.StatusConflict,
	store.ErrIdentityNotFound:    http.StatusNotFound,
	store.ErrIdentityNotVerified: http.StatusConflict,
	store.ErrTokenNotFound:       http.StatusNotFound,

	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
	store.ErrScanningRows:     http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError sends the uniform failure envelope. Internal detail stays in
// the logs; 5xx responses always carry the generic status text.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	_, _ = utils.WriteJSON(w, models.ErrorResponse{Success: false, Error: message}, status)
}

// writeErrorMessage sends the failure envelope with an explicit message.
func writeErrorMessage(w http.ResponseWriter, message string, status int) {
	_, _ = utils.WriteJSON(w, models.ErrorResponse{Success: false, Error: message}, status)
}

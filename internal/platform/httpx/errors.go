package httpx

import (
	"errors"
	"net/http"

	"github.com/craftline-erp/craftline/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. The
// mapping surfaces each locally detectable error kind with enough structure
// for the caller to act on it; nothing is retried server-side.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidTransition):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Transition", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrReconciliationMismatch):
		Problem(w, http.StatusUnprocessableEntity, "Reconciliation Mismatch", err.Error())
	case errors.Is(err, shared.ErrCollaborator):
		Problem(w, http.StatusBadGateway, "Collaborator Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/DimaChup/anki-flashcards-sub000/internal/api/response"
	"github.com/DimaChup/anki-flashcards-sub000/pkg/models"
)

// writeError maps service errors onto the HTTP status taxonomy. Anything
// not matched by a sentinel is a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrCardNotFound),
		errors.Is(err, models.ErrWordNotFound),
		errors.Is(err, models.ErrBatchNotFound),
		errors.Is(err, models.ErrDatabaseNotFound):
		response.NotFound(w, err)
	case errors.Is(err, models.ErrInvalidQuality):
		response.BadRequest(w, err)
	case errors.Is(err, models.ErrDuplicateSignature):
		response.Conflict(w, err)
	case errors.Is(err, models.ErrStoreUnavailable):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}

// ownerFrom pulls the acting owner from the query string. Auth is handled
// upstream of this service, so the id arrives explicitly.
func ownerFrom(r *http.Request) (string, error) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		return "", errors.New("owner is required")
	}
	return owner, nil
}

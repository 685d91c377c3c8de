package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hangar/internal/artifact"
	"hangar/internal/auth"
	"hangar/internal/blob"
	"hangar/internal/catalog"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *artifact.ValidationError
		blobFault     *blob.Fault
		catalogFault  *catalog.Fault
	)
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, err)
	case errors.As(err, &blobFault):
		respondError(w, http.StatusBadGateway, err)
	case errors.As(err, &catalogFault):
		respondError(w, http.StatusInternalServerError, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

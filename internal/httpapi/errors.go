package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"ustazhub.kz/internal/account"
	"ustazhub.kz/internal/achievement"
	"ustazhub.kz/internal/storage"
)

// handleDomainError maps service errors onto HTTP status codes.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *account.ValidationError
	if errors.As(err, &verr) {
		payload := map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		}
		if rid := RequestIDFromContext(r.Context()); rid != "" {
			payload["request_id"] = rid
		}
		writeJSON(w, http.StatusBadRequest, payload)
		return
	}
	switch {
	case errors.Is(err, account.ErrInvalidRole),
		errors.Is(err, achievement.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, account.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, achievement.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrDuplicateName),
		errors.Is(err, account.ErrSelfModification):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, achievement.ErrPayloadTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// Package handler exposes the HTTP surface. It is the single place where
// apperr codes become HTTP statuses.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/apperr"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)

	var status int
	switch code {
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeUnauthorized:
		status = http.StatusUnauthorized
	case apperr.CodeAccessDenied:
		status = http.StatusForbidden
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: err.Error(), Code: string(code), Reason: apperr.ReasonOf(err)}
	if status == http.StatusInternalServerError {
		// Do not leak datastore details to clients.
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON", Code: string(apperr.CodeValidation)})
}

func invalidID(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + name, Code: string(apperr.CodeValidation)})
}

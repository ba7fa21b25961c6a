package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pitwall-io/pitwall/errs"
	"github.com/pitwall-io/pitwall/internal/observability"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.Log().Warn("response encode failed",
			observability.Field{Key: "error", Value: err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: ""})
}

// writeUpstreamError maps integration-layer failure codes onto HTTP statuses:
// missing data is the caller's 404, everything else surfaces as a gateway
// failure rather than a 500, since the fault sits upstream.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var e *errs.E
	if !errors.As(err, &e) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusBadGateway
	switch e.Code {
	case errs.CodeNotFound:
		status = http.StatusNotFound
	case errs.CodeInvalid:
		status = http.StatusBadRequest
	case errs.CodeRateLimited, errs.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorBody{Error: e.Error(), Code: string(e.Code)})
}

package internalhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lomoval/personal-calendar/internal/app"
	log "github.com/sirupsen/logrus"
)

const (
	msgValidation     = "Validation error"
	msgNotFound       = "Event not found"
	msgInternal       = "Internal server error"
	msgInvalidRequest = "Invalid request body"
)

type errorResponse struct {
	Error   string           `json:"error"`
	Details []app.FieldError `json:"details,omitempty"`
	Message string           `json:"message,omitempty"`
}

type responder struct {
	development bool
}

func (r responder) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (r responder) writeError(w http.ResponseWriter, err error) {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgValidation, Details: vErr.Details})
	case errors.Is(err, app.ErrNotFound):
		r.writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	default:
		log.Errorf("request failed: %v", err)
		resp := errorResponse{Error: msgInternal}
		if r.development {
			resp.Message = err.Error()
		}
		r.writeJSON(w, http.StatusInternalServerError, resp)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/fintab/internal/common"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as the public error body. Unauthorized answers also
// clear the session cookie.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := common.AsError(err)
	if e.Kind == common.KindUnauthorized {
		h.clearSessionCookie(w)
	}
	if e.Kind.StatusCode() >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed",
			"error", e.Error(),
			"request_id", requestIDFromContext(r.Context()),
		)
	}
	writeJSON(w, e.Kind.StatusCode(), e.Response())
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("The request body is empty", "Send a JSON body and try again")
		}
		return common.NewValidationError("The request body is not valid JSON", "Check the submitted fields and try again")
	}
	return nil
}

package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request ID; the client gets the
// mapped user message and its support code, as an HTMX fragment, JSON, or
// a full HTML page depending on the request.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/qualitycheck/internal/core"
	"github.com/JonMunkholm/qualitycheck/internal/logging"
	"github.com/JonMunkholm/qualitycheck/internal/web/templates"
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a run or lookup error.
func statusFor(err error) int {
	var (
		colErr *core.ColumnError
		inErr  *core.InputError
	)
	switch {
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &colErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInputMissing), errors.As(err, &inErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, r, statusCode, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.Layout("Error", templates.ErrorAlert(msg.Message, msg.Action, msg.Code)).Render(r.Context(), w)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers JSON. API routes default to
// JSON unless the client asks for HTML, as a browser form post does.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/") && !strings.Contains(accept, "text/html")
}

package handler

// RESPONSE HELPERS:
// Every endpoint answers with the same envelope so the client can always
// check "success" first:
//
//	{"success": true,  "msg": "...", "data": {...}, "count": 3}
//	{"success": false, "msg": "...", "error": "detail, development only"}
//
// writeError is the single place where domain errors become status codes.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/study-cards/internal/apperror"
)

// Response is the standard envelope returned by all API endpoints.
type Response struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

const genericServerError = "Internal server error"

// Responder writes envelopes. In development mode 500 responses carry the
// underlying error text in "error"; otherwise that detail stays in the logs.
type Responder struct {
	dev    bool
	logger *slog.Logger
}

func NewResponder(development bool, logger *slog.Logger) *Responder {
	return &Responder{dev: development, logger: logger}
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set later is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func (rs *Responder) ok(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, Response{Success: true, Msg: msg, Data: data})
}

func (rs *Responder) fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Msg: msg})
}

// statusFor maps an error category to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrInvalidFileType),
		errors.Is(err, apperror.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to a status code and sends the envelope.
//
// Client errors carry the AppError message in "msg". Server errors get
// fallbackMsg and, in development only, the error text in "error".
func (rs *Responder) writeError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := statusFor(err)

	if status < http.StatusInternalServerError {
		msg := fallbackMsg
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			msg = appErr.Message
		}
		rs.fail(w, status, msg)
		return
	}

	rs.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	detail := genericServerError
	if rs.dev {
		detail = err.Error()
	}
	writeJSON(w, status, Response{Success: false, Msg: fallbackMsg, Error: detail})
}

// HandleWelcome answers GET /api.
func (rs *Responder) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	rs.ok(w, http.StatusOK, "Welcome to the Study Cards API", nil)
}

// HandleHealth answers GET /healthz.
func (rs *Responder) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// HandleNotFound is the JSON 404 for unknown API routes.
func (rs *Responder) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	rs.fail(w, http.StatusNotFound, "Route not found")
}

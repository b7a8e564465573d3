package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/study-cards/internal/auth"
	"github.com/sakif/study-cards/internal/service"
)

// maxJSONBody caps credential payloads.
const maxJSONBody = 1 << 20

// AuthHandler serves registration, login and the current account.
type AuthHandler struct {
	auth   *service.AuthService
	resp   *Responder
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, resp *Responder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, resp: resp, logger: logger}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the flat shape returned by register and login.
type authResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

func toAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		Success: true,
		ID:      res.User.ID,
		Name:    res.User.Name,
		Email:   res.User.Email,
		Token:   res.Token,
	}
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid auth JSON", slog.String("error", err.Error()))
		h.resp.fail(w, http.StatusBadRequest, "Invalid JSON body")
		return req, false
	}
	return req, true
}

// HandleRegister creates an account.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"name": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.resp.writeError(w, r, err, "Server error during registration")
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.writeError(w, r, err, "Server error during login")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		h.resp.writeError(w, r, err, "Server error fetching user")
		return
	}

	h.resp.ok(w, http.StatusOK, "", user)
}

// HandleDeleteAccount removes the account and every set it owns.
//
// HTTP: DELETE /auth/delete
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.auth.DeleteAccount(r.Context(), userID); err != nil {
		h.resp.writeError(w, r, err, "Server error deleting account")
		return
	}

	h.resp.ok(w, http.StatusOK, "Account deleted successfully.", nil)
}

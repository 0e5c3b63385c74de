package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"equipviz/internal/http/middleware"
	"equipviz/internal/models"
	"equipviz/internal/password"
	"equipviz/internal/repository"
	"equipviz/internal/service"
)

// AuthHandlers serves the /api/auth endpoints.
type AuthHandlers struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(auth *service.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		User    *models.User      `json:"user"`
		Tokens  service.TokenPair `json:"tokens"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, tokens, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username is already taken")
		case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrAllNumeric):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("register failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "User registered successfully",
		User:    user,
		Tokens:  tokens,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	type response struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		User    *models.User      `json:"user"`
		Tokens  service.TokenPair `json:"tokens"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "please provide both username and password")
		return
	}

	user, tokens, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Login successful",
		User:    user,
		Tokens:  tokens,
	})
}

// Logout handles POST /api/auth/logout. The presented refresh token is
// blacklisted for the remainder of its lifetime.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Refresh string `json:"refresh"`
	}
	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	if err := h.auth.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrWrongTokenType) {
			writeError(w, http.StatusBadRequest, "invalid token")
			return
		}
		h.logger.Error("logout failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "Logout successful"})
}

// Refresh handles POST /api/auth/token/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Refresh string `json:"refresh"`
	}
	type response struct {
		Access string `json:"access"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	access, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrWrongTokenType),
			errors.Is(err, service.ErrTokenRevoked):
			writeError(w, http.StatusUnauthorized, "token is invalid or expired")
		default:
			h.logger.Error("token refresh failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to refresh token")
		}
		return
	}

	writeJSON(w, http.StatusOK, response{Access: access})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, User: user})
}

// UpdateProfile handles PATCH /api/auth/profile.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email string `json:"email"`
	}
	type response struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.auth.UpdateEmail(r.Context(), userID, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("profile update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Profile updated successfully",
		User:    user,
	})
}

// ChangePassword handles POST /api/auth/password/change.
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	type request struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "old and new passwords are required")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			writeError(w, http.StatusBadRequest, "old password is incorrect")
		case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrAllNumeric):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("password change failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "Password changed successfully"})
}

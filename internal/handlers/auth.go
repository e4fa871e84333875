package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
	"github.com/christian-rost/stammdatenmanagement/internal/middleware"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users           *services.UserService
	jwtAuth         *middleware.JWTAuthMiddleware
	loginLimiter    *middleware.RateLimiter
	registerLimiter *middleware.RateLimiter
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(users *services.UserService, jwtAuth *middleware.JWTAuthMiddleware, loginLimiter, registerLimiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{
		users:           users,
		jwtAuth:         jwtAuth,
		loginLimiter:    loginLimiter,
		registerLimiter: registerLimiter,
	}
}

// SetupRoutes sets up authentication routes
func (h *AuthHandler) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/auth/register", h.registerLimiter.WrapFunc(h.handleRegister))
	mux.Handle("POST /api/auth/login", h.loginLimiter.WrapFunc(h.handleLogin))
	mux.HandleFunc("GET /api/auth/me", h.handleMe)
}

// handleRegister handles POST /api/auth/register
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, services.ErrUserExists) {
		api.RespondErrorWithCode(w, http.StatusBadRequest, "user_exists", "Username or email already exists")
		return
	}
	if err != nil {
		log.Printf("AuthHandler: Failed to register user '%s': %v", req.Username, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	log.Printf("AuthHandler: User '%s' registered from %s", user.Username, r.RemoteAddr)
	api.RespondJSON(w, http.StatusOK, api.UserToResponse(user))
}

// handleLogin handles POST /api/auth/login
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Printf("AuthHandler: Failed login attempt for user '%s' from %s", req.Username, r.RemoteAddr)
		api.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("AuthHandler: Failed to authenticate user '%s': %v", req.Username, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	token, err := h.jwtAuth.GenerateToken(user.ID, user.Username)
	if err != nil {
		log.Printf("AuthHandler: Failed to generate token for user '%s': %v", user.Username, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.Printf("AuthHandler: User '%s' logged in successfully from %s", user.Username, r.RemoteAddr)

	api.RespondJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(h.jwtAuth.Expiry().Seconds()),
	})
}

// handleMe handles GET /api/auth/me
func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		api.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		api.RespondError(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if err != nil {
		log.Printf("AuthHandler: Failed to load user %s: %v", userID, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	api.RespondJSON(w, http.StatusOK, api.UserToResponse(user))
}

package api

// ========== Auth Types ==========

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the response body for POST /api/auth/login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// UserResponse is a user without credentials.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// ========== Review Types ==========

// DecisionRequest is the request body for POST /api/decisions. The author
// is taken from the access token, never from the body.
type DecisionRequest struct {
	Name      string   `json:"name" validate:"max=255"`
	Locality  string   `json:"locality" validate:"max=255"`
	KeepID    *string  `json:"keep_id" validate:"omitempty,max=32"`
	DeleteIDs []string `json:"delete_ids" validate:"omitempty,dive,max=32"`
	Note      *string  `json:"note" validate:"omitempty,max=4000"`
	Status    string   `json:"status" validate:"omitempty,oneof=open resolved ignored"`
}

// HealthResponse is the response body for GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
}

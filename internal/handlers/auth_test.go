package handlers

import (
	"net/http"
	"testing"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
	"github.com/christian-rost/stammdatenmanagement/internal/middleware"
	"github.com/christian-rost/stammdatenmanagement/internal/testhelpers"
)

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	srv := newTestServer(t, false)

	var registered api.UserResponse
	srv.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	}).AssertStatus(http.StatusOK).DecodeJSON(&registered)

	if registered.ID == "" || registered.Username != "alice" || registered.IsAdmin {
		t.Errorf("unexpected registered user %+v", registered)
	}

	var token api.TokenResponse
	srv.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: "alice",
		Password: "correct-horse",
	}).AssertStatus(http.StatusOK).DecodeJSON(&token)

	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token response %+v", token)
	}
	if token.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", token.ExpiresIn)
	}

	var me api.UserResponse
	srv.do(t, http.MethodGet, "/api/auth/me", token.AccessToken, nil).
		AssertStatus(http.StatusOK).
		DecodeJSON(&me)
	if me.ID != registered.ID || me.Email != "alice@example.com" {
		t.Errorf("unexpected /me response %+v", me)
	}
}

func TestAuthHandler_RegisterRejections(t *testing.T) {
	srv := newTestServer(t, false)
	srv.login(t, "taken")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"short password", api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"}, http.StatusUnprocessableEntity, "validation_error"},
		{"invalid email", api.RegisterRequest{Username: "bob", Email: "bob", Password: "password123"}, http.StatusUnprocessableEntity, "validation_error"},
		{"duplicate username", api.RegisterRequest{Username: "taken", Email: "new@example.com", Password: "password123"}, http.StatusBadRequest, "user_exists"},
		{"duplicate email", api.RegisterRequest{Username: "other", Email: "taken@example.com", Password: "password123"}, http.StatusBadRequest, "user_exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.do(t, http.MethodPost, "/api/auth/register", "", tt.body).
				AssertStatus(tt.wantStatus).
				AssertErrorCode(tt.wantCode)
		})
	}
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	srv := newTestServer(t, false)
	srv.login(t, "alice")

	srv.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "alice", Password: "wrong-password"}).
		AssertStatus(http.StatusUnauthorized).
		AssertBodyContains("Invalid credentials")

	srv.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: "nobody", Password: "password123"}).
		AssertStatus(http.StatusUnauthorized)

	srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice"}).
		AssertStatus(http.StatusUnprocessableEntity)

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/auth/login", nil).
		WithRawBody("not json").
		Execute(srv.handler).
		AssertStatus(http.StatusBadRequest)
}

func TestAuthHandler_LoginRateLimited(t *testing.T) {
	users := newTestServer(t, false).users
	jwtAuth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{JWTSecret: "s", JWTExpiryHours: 1})

	mux := http.NewServeMux()
	NewAuthHandler(users, jwtAuth, middleware.NewRateLimiter("login", 2), middleware.NewRateLimiter("register", 2)).SetupRoutes(mux)

	body := api.LoginRequest{Username: "ghost", Password: "password123"}
	for i := 0; i < 2; i++ {
		testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/auth/login", nil).
			WithJSONBody(body).
			Execute(mux).
			AssertStatus(http.StatusUnauthorized)
	}
	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/auth/login", nil).
		WithJSONBody(body).
		Execute(mux).
		AssertStatus(http.StatusTooManyRequests).
		AssertErrorCode("rate_limited")
}

func TestAuthHandler_MeRequiresToken(t *testing.T) {
	srv := newTestServer(t, false)

	srv.do(t, http.MethodGet, "/api/auth/me", "", nil).AssertStatus(http.StatusUnauthorized)

	orphan, err := srv.jwt.GenerateToken("deleted-user", "ghost")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	srv.do(t, http.MethodGet, "/api/auth/me", orphan, nil).AssertStatus(http.StatusUnauthorized)
}

package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/middleware"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
	"github.com/christian-rost/stammdatenmanagement/internal/testhelpers"
)

// testServer wires the handlers the way cmd/stammdaten does
type testServer struct {
	handler  http.Handler
	jwt      *middleware.JWTAuthMiddleware
	users    *services.UserService
	reviewDB *gorm.DB
}

func newTestServer(t *testing.T, withReviewDB bool) *testServer {
	t.Helper()

	users := services.NewUserService(testhelpers.SetupUserDB(t))
	jwtAuth := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		JWTSecret:      "handler-test-secret",
		JWTExpiryHours: 1,
		SkipPaths:      []string{"/", "/api/health", "/metrics", "/api/auth/login", "/api/auth/register"},
	})

	srv := &testServer{jwt: jwtAuth, users: users}

	review := services.NewReviewService(nil, nil)
	if withReviewDB {
		srv.reviewDB = testhelpers.SetupReviewDB(t)
		review = services.NewReviewService(database.NewRecordStore(srv.reviewDB), database.NewDecisionStore(srv.reviewDB))
	}

	mux := http.NewServeMux()
	NewHTTPHandler(withReviewDB, nil).SetupRoutes(mux)
	NewAuthHandler(users, jwtAuth, middleware.NewRateLimiter("login", 100), middleware.NewRateLimiter("register", 100)).SetupRoutes(mux)
	NewReviewHandler(review, 5*time.Second).SetupRoutes(mux)

	srv.handler = middleware.RequestIDMiddleware(jwtAuth.Wrap(mux))
	return srv
}

// login registers a reviewer and returns a bearer token for it
func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	user, err := s.users.Register(context.Background(), username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *testhelpers.HTTPTestContext {
	t.Helper()
	ctx := testhelpers.NewHTTPTestContext(t, method, path, nil)
	if token != "" {
		ctx.WithBearerToken(token)
	}
	if body != nil {
		ctx.WithJSONBody(body)
	}
	return ctx.Execute(s.handler)
}

// Package testhelpers provides reusable testing utilities for the review API.
//
// This package contains:
// - HTTP test helpers (requests, bearer tokens, response assertions)
// - Database helpers (temporary sqlite review and user databases, seeding)
// - Builders for master records, decisions and users
// - Assertion helpers
package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

// ========================================
// HTTP Test Helpers
// ========================================

// HTTPTestContext holds components for HTTP handler testing
type HTTPTestContext struct {
	T        *testing.T
	Recorder *httptest.ResponseRecorder
	Request  *http.Request
}

// NewHTTPTestContext creates a new HTTP test context
func NewHTTPTestContext(t *testing.T, method, path string, body io.Reader) *HTTPTestContext {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	return &HTTPTestContext{
		T:        t,
		Recorder: httptest.NewRecorder(),
		Request:  req,
	}
}

// WithHeader adds a header to the request
func (ctx *HTTPTestContext) WithHeader(key, value string) *HTTPTestContext {
	ctx.Request.Header.Set(key, value)
	return ctx
}

// WithJSONBody sets JSON body on the request
func (ctx *HTTPTestContext) WithJSONBody(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		ctx.T.Fatalf("failed to marshal JSON body: %v", err)
	}
	return ctx.WithRawBody(string(body))
}

// WithRawBody replaces the request body with raw JSON text
func (ctx *HTTPTestContext) WithRawBody(body string) *HTTPTestContext {
	header := ctx.Request.Header.Clone()
	ctx.Request = httptest.NewRequest(ctx.Request.Method, ctx.Request.URL.String(), bytes.NewReader([]byte(body)))
	ctx.Request.Header = header
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx
}

// WithBearerToken adds Authorization Bearer header
func (ctx *HTTPTestContext) WithBearerToken(token string) *HTTPTestContext {
	return ctx.WithHeader("Authorization", "Bearer "+token)
}

// Execute runs the handler and returns the response
func (ctx *HTTPTestContext) Execute(handler http.Handler) *HTTPTestContext {
	handler.ServeHTTP(ctx.Recorder, ctx.Request)
	return ctx
}

// AssertStatus checks the response status code
func (ctx *HTTPTestContext) AssertStatus(expected int) *HTTPTestContext {
	ctx.T.Helper()
	if ctx.Recorder.Code != expected {
		ctx.T.Errorf("expected status %d, got %d. Body: %s", expected, ctx.Recorder.Code, ctx.Recorder.Body.String())
	}
	return ctx
}

// AssertBodyContains checks if response body contains substring
func (ctx *HTTPTestContext) AssertBodyContains(substr string) *HTTPTestContext {
	ctx.T.Helper()
	body := ctx.Recorder.Body.String()
	if !strings.Contains(body, substr) {
		ctx.T.Errorf("expected body to contain %q, got: %s", substr, body)
	}
	return ctx
}

// AssertHeader checks response header value
func (ctx *HTTPTestContext) AssertHeader(key, expected string) *HTTPTestContext {
	ctx.T.Helper()
	got := ctx.Recorder.Header().Get(key)
	if got != expected {
		ctx.T.Errorf("expected header %s=%q, got %q", key, expected, got)
	}
	return ctx
}

// AssertErrorCode checks the machine-readable code of an error response
func (ctx *HTTPTestContext) AssertErrorCode(expected string) *HTTPTestContext {
	ctx.T.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(ctx.Recorder.Body.Bytes(), &resp); err != nil {
		ctx.T.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != expected {
		ctx.T.Errorf("expected error code %q, got %q. Body: %s", expected, resp.Code, ctx.Recorder.Body.String())
	}
	return ctx
}

// DecodeJSON decodes response body as JSON
func (ctx *HTTPTestContext) DecodeJSON(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	if err := json.NewDecoder(ctx.Recorder.Body).Decode(v); err != nil {
		ctx.T.Fatalf("failed to decode JSON response: %v", err)
	}
	return ctx
}

// ========================================
// Database Helpers
// ========================================

// SetupReviewDB opens a migrated sqlite review database in a temp dir
func SetupReviewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLiteFile(filepath.Join(t.TempDir(), "review.db"), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open review database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate review database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SetupUserDB opens a migrated sqlite user database in a temp dir
func SetupUserDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLiteFile(filepath.Join(t.TempDir(), "users.db"), logger.Silent)
	if err != nil {
		t.Fatalf("failed to open user database: %v", err)
	}
	if err := database.AutoMigrateUsers(db); err != nil {
		t.Fatalf("failed to migrate user database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedRecords inserts master records
func SeedRecords(t *testing.T, db *gorm.DB, records ...database.MasterRecord) {
	t.Helper()
	if len(records) == 0 {
		return
	}
	if err := db.Create(&records).Error; err != nil {
		t.Fatalf("failed to seed master records: %v", err)
	}
}

// SeedDecisions inserts decisions
func SeedDecisions(t *testing.T, db *gorm.DB, decisions ...database.Decision) {
	t.Helper()
	for i := range decisions {
		if err := db.Create(&decisions[i]).Error; err != nil {
			t.Fatalf("failed to seed decision %q/%q: %v", decisions[i].Name1, decisions[i].Ort01, err)
		}
	}
}

// ========================================
// Assertion Helpers
// ========================================

// AssertEqual checks equality with a helpful error message
func AssertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertNoError checks that no error occurred
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

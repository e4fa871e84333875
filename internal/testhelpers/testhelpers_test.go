package testhelpers

import (
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

func TestHTTPTestContext(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Auth", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":"short","code":"tea"}`))
	})

	NewHTTPTestContext(t, http.MethodPost, "/brew", nil).
		WithBearerToken("tok").
		WithJSONBody(map[string]string{"kind": "green"}).
		Execute(handler).
		AssertStatus(http.StatusTeapot).
		AssertHeader("X-Auth", "Bearer tok").
		AssertHeader("Content-Type", "application/json").
		AssertBodyContains("short").
		AssertErrorCode("tea")
}

func TestSetupReviewDB_SeedAndQuery(t *testing.T) {
	db := SetupReviewDB(t)

	SeedRecords(t, db,
		Record("1", "Acme", "Berlin"),
		NewMasterRecordBuilder("2").WithName("Acme").Build(),
	)
	SeedDecisions(t, db, NewDecisionBuilder("Acme", "Berlin").Keep("1").Delete("2").WithNote("dup").Build())

	var records []database.MasterRecord
	if err := db.Order("lifnr").Find(&records).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	AssertEqual(t, 2, len(records), "record count")
	if records[1].Ort01 != nil {
		t.Errorf("expected absent locality, got %q", *records[1].Ort01)
	}

	var decision database.Decision
	if err := db.First(&decision).Error; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	AssertSliceEqual(t, []string{"2"}, []string(decision.DeleteIDs), "delete ids")
	AssertEqual(t, database.DecisionStatusResolved, decision.Status, "status")
}

func TestUserBuilder_HashesPassword(t *testing.T) {
	u := NewUserBuilder("carol").WithPassword("s3cret-pass").AsAdmin().Build()

	if !u.IsAdmin || u.Email != "carol@example.com" || u.ID == "" {
		t.Errorf("unexpected user %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Error("expected hash of the configured password")
	}

	db := SetupUserDB(t)
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to store built user: %v", err)
	}
}

func TestJSONAssertions(t *testing.T) {
	AssertJSONEqual(t, `{"a":1,"b":[1,2]}`, `{ "b": [1, 2], "a": 1 }`, "formatting ignored")
	AssertJSONKeyValue(t, `{"status":"open","count":2}`, "count", 2, "numeric value")
	AssertJSONArrayLength(t, `[{},{},{}]`, 3, "array length")
	AssertSliceContains(t, []string{"x", "y"}, "y", "contains")
}

package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/export"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
	"github.com/christian-rost/stammdatenmanagement/internal/testhelpers"
)

func seedAcme(t *testing.T, srv *testServer) {
	t.Helper()
	testhelpers.SeedRecords(t, srv.reviewDB,
		testhelpers.Record("1", "Acme", "Berlin"),
		testhelpers.Record("2", "Acme", "Berlin"),
		testhelpers.Record("3", "Acme", "Munich"),
		testhelpers.NewMasterRecordBuilder("4").WithName("Acme").Build(),
	)
}

func TestReviewHandler_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, true)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/duplicates"},
		{http.MethodGet, "/api/duplicates/records?name=Acme"},
		{http.MethodPost, "/api/decisions"},
		{http.MethodGet, "/api/stats"},
		{http.MethodGet, "/api/export"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			srv.do(t, p.method, p.path, "", nil).AssertStatus(http.StatusUnauthorized)
		})
	}
}

func TestReviewHandler_ListDuplicates(t *testing.T) {
	srv := newTestServer(t, true)
	seedAcme(t, srv)
	token := srv.login(t, "alice")

	var views []services.GroupView
	srv.do(t, http.MethodGet, "/api/duplicates", token, nil).
		AssertStatus(http.StatusOK).
		DecodeJSON(&views)

	if len(views) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(views), views)
	}
	// ("Acme","") sorts before ("Acme","Berlin")
	if views[0].Locality != "" || views[1].Locality != "Berlin" || views[2].Locality != "Munich" {
		t.Errorf("unexpected group order %+v", views)
	}
	testhelpers.AssertSliceEqual(t, []string{"1", "2"}, views[1].MemberIDs, "Berlin members")
	if views[1].Status != database.DecisionStatusOpen || views[1].KeepID != nil || views[1].Author != nil {
		t.Errorf("undecided group should carry defaults, got %+v", views[1])
	}
}

func TestReviewHandler_ListDuplicatesPaginated(t *testing.T) {
	srv := newTestServer(t, true)
	seedAcme(t, srv)
	token := srv.login(t, "alice")

	ctx := srv.do(t, http.MethodGet, "/api/duplicates?page=2&per_page=2", token, nil).
		AssertStatus(http.StatusOK)

	var resp struct {
		Data       []services.GroupView `json:"data"`
		Pagination api.PaginationMeta   `json:"pagination"`
	}
	ctx.DecodeJSON(&resp)

	if len(resp.Data) != 1 || resp.Data[0].Locality != "Munich" {
		t.Errorf("unexpected page %+v", resp.Data)
	}
	if resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 2 {
		t.Errorf("unexpected pagination %+v", resp.Pagination)
	}
}

func TestReviewHandler_GroupRecords(t *testing.T) {
	srv := newTestServer(t, true)
	seedAcme(t, srv)
	token := srv.login(t, "alice")

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"named locality", "name=Acme&locality=Berlin", []string{"1", "2"}},
		{"absent locality", "name=Acme", []string{"4"}},
		{"empty locality", "name=Acme&locality=", []string{"4"}},
		{"unknown group", "name=Nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := srv.do(t, http.MethodGet, "/api/duplicates/records?"+tt.query, token, nil).
				AssertStatus(http.StatusOK)
			if len(tt.wantIDs) == 0 {
				testhelpers.AssertJSONArrayLength(t, ctx.Recorder.Body.String(), 0, "empty group")
				return
			}

			var records []database.MasterRecord
			ctx.DecodeJSON(&records)
			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.Lifnr)
			}
			testhelpers.AssertSliceEqual(t, tt.wantIDs, ids, "record ids")
		})
	}

	srv.do(t, http.MethodGet, "/api/duplicates/records?locality=Berlin", token, nil).
		AssertStatus(http.StatusBadRequest)
}

func TestReviewHandler_SaveDecisionAndStats(t *testing.T) {
	srv := newTestServer(t, true)
	seedAcme(t, srv)
	token := srv.login(t, "alice")

	srv.do(t, http.MethodPost, "/api/decisions", token, map[string]interface{}{
		"name":       "Acme",
		"locality":   "Berlin",
		"keep_id":    "1",
		"delete_ids": []string{"2"},
		"note":       "same VAT id",
	}).AssertStatus(http.StatusOK).AssertBodyContains("decision saved")

	srv.do(t, http.MethodPost, "/api/decisions", token, map[string]interface{}{
		"name":     "Acme",
		"locality": "Munich",
		"status":   "ignored",
	}).AssertStatus(http.StatusOK)

	var stats services.Stats
	srv.do(t, http.MethodGet, "/api/stats", token, nil).
		AssertStatus(http.StatusOK).
		DecodeJSON(&stats)
	if stats != (services.Stats{Total: 3, Open: 1, Resolved: 1, Ignored: 1}) {
		t.Errorf("unexpected stats %+v", stats)
	}

	var views []services.GroupView
	srv.do(t, http.MethodGet, "/api/duplicates", token, nil).DecodeJSON(&views)
	berlin := views[1]
	if berlin.Status != database.DecisionStatusResolved || berlin.KeepID == nil || *berlin.KeepID != "1" {
		t.Errorf("unexpected Berlin view %+v", berlin)
	}
	if berlin.Author == nil || *berlin.Author != "alice" {
		t.Errorf("author should come from the token, got %v", berlin.Author)
	}
	testhelpers.AssertSliceEqual(t, []string{"2"}, berlin.DeleteIDs, "delete ids")
}

func TestReviewHandler_SaveDecisionRejections(t *testing.T) {
	srv := newTestServer(t, true)
	token := srv.login(t, "alice")

	srv.do(t, http.MethodPost, "/api/decisions", token, map[string]interface{}{"name": "Acme", "status": "merged"}).
		AssertStatus(http.StatusUnprocessableEntity).
		AssertErrorCode("validation_error")

	srv.do(t, http.MethodPost, "/api/decisions", token, map[string]interface{}{"name": "Acme", "author": "mallory"}).
		AssertStatus(http.StatusBadRequest).
		AssertBodyContains("unknown field")

	testhelpers.NewHTTPTestContext(t, http.MethodPost, "/api/decisions", nil).
		WithBearerToken(token).
		WithRawBody(`{"name":`).
		Execute(srv.handler).
		AssertStatus(http.StatusBadRequest)
}

func TestReviewHandler_Export(t *testing.T) {
	srv := newTestServer(t, true)
	token := srv.login(t, "alice")
	testhelpers.SeedDecisions(t, srv.reviewDB,
		testhelpers.NewDecisionBuilder("Beta", "Hamburg").WithStatus(database.DecisionStatusIgnored).Build(),
		testhelpers.NewDecisionBuilder("Acme", "Berlin").Keep("1").Delete("2", "3").WithAuthor("alice").Build(),
	)

	ctx := srv.do(t, http.MethodGet, "/api/export", token, nil).
		AssertStatus(http.StatusOK).
		AssertHeader("Content-Type", export.ContentType).
		AssertHeader("Content-Disposition", "attachment; filename=dubletten_entscheidungen.csv")

	rows, err := csv.NewReader(strings.NewReader(ctx.Recorder.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Acme" || rows[1][4] != "2 | 3" || rows[2][0] != "Beta" {
		t.Errorf("unexpected rows %v", rows[1:])
	}
}

func TestReviewHandler_NotConfigured(t *testing.T) {
	srv := newTestServer(t, false)
	token := srv.login(t, "alice")

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/duplicates", nil},
		{http.MethodGet, "/api/duplicates/records?name=Acme", nil},
		{http.MethodPost, "/api/decisions", map[string]string{"name": "Acme"}},
		{http.MethodGet, "/api/stats", nil},
		{http.MethodGet, "/api/export", nil},
	}
	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			srv.do(t, r.method, r.path, token, r.body).
				AssertStatus(http.StatusServiceUnavailable).
				AssertErrorCode(services.KindNotConfigured)
		})
	}
}

func TestReviewHandler_StoreFailures(t *testing.T) {
	srv := newTestServer(t, true)
	token := srv.login(t, "alice")
	if err := database.Close(srv.reviewDB); err != nil {
		t.Fatalf("failed to close review database: %v", err)
	}

	srv.do(t, http.MethodGet, "/api/duplicates", token, nil).
		AssertStatus(http.StatusInternalServerError).
		AssertErrorCode(services.KindDataUnavailable)

	srv.do(t, http.MethodGet, "/api/stats", token, nil).
		AssertStatus(http.StatusInternalServerError).
		AssertErrorCode(services.KindDataUnavailable)

	srv.do(t, http.MethodPost, "/api/decisions", token, map[string]string{"name": "Acme"}).
		AssertStatus(http.StatusInternalServerError).
		AssertErrorCode(services.KindStorageWriteFailed)
}

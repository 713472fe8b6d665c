package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/respond"
	"github.com/zamowbot/zamowbot/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pipe, sessions, menu := testutil.NewTestPipeline(t)
	controller := respond.NewController(respond.ModeActive, nil, nil)
	return NewServer(pipe, sessions, menu, controller)
}

func TestTurnHandlerMintsSession(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/turn", TurnRequest{Utterance: "znajdz cos w Krakowie"})

	srv.Routes().ServeHTTP(rr, req)

	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "turn without session ID")
	response := testutil.AssertJSONResponse(t, rr, models.APIStatusOK)
	result, ok := response["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result missing: %v", response)
	}
	if result["session_id"] == "" || result["session_id"] == nil {
		t.Error("no session ID minted")
	}
	final, ok := result["final"].(map[string]interface{})
	if !ok || final["reply"] == "" {
		t.Errorf("final reply missing: %v", result["final"])
	}
}

func TestTurnHandlerValidation(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/turn", TurnRequest{SessionID: "s1", Utterance: "   "})
	srv.Routes().ServeHTTP(rr, req)
	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "empty utterance")
	testutil.AssertJSONResponse(t, rr, models.APIStatusError)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/turn", nil)
	srv.Routes().ServeHTTP(rr, req)
	testutil.AssertHTTPStatus(t, http.StatusBadRequest, rr.Code, "missing body")

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/turn", nil)
	srv.Routes().ServeHTTP(rr, req)
	testutil.AssertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "GET /turn")
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)
	mux := srv.Routes()

	// Create a session through a turn.
	rr := httptest.NewRecorder()
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/turn", TurnRequest{SessionID: "s-api", Utterance: "znajdz cos w Krakowie"})
	mux.ServeHTTP(rr, req)
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "seed turn")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "list sessions")
	response := testutil.AssertJSONResponse(t, rr, models.APIStatusOK)
	ids, ok := response["result"].([]interface{})
	if !ok || len(ids) != 1 || ids[0] != "s-api" {
		t.Errorf("session list = %v", response["result"])
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/s-api", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "get session")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/unknown", nil))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "get unknown session")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/sessions/s-api", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "delete session")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/s-api", nil))
	testutil.AssertHTTPStatus(t, http.StatusNotFound, rr.Code, "get deleted session")
}

func TestOverridesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	mux := srv.Routes()

	rr := httptest.NewRecorder()
	req := testutil.CreateHTTPRequest(t, http.MethodPost, "/admin/overrides",
		models.AdminOverrides{ForceStyle: models.StyleNeutral, DisableLLM: true})
	mux.ServeHTTP(rr, req)
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "post overrides")

	got := srv.pipeline.Overrides()
	if got.ForceStyle != models.StyleNeutral || !got.DisableLLM {
		t.Errorf("overrides not applied: %+v", got)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/overrides", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "get overrides")
	response := testutil.AssertJSONResponse(t, rr, models.APIStatusOK)
	result, ok := response["result"].(map[string]interface{})
	if !ok || result["force_style"] != string(models.StyleNeutral) {
		t.Errorf("overrides payload = %v", response["result"])
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/report", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "report")
	response := testutil.AssertJSONResponse(t, rr, models.APIStatusOK)
	result, ok := response["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("report payload = %v", response)
	}
	if result["operating_mode"] != string(respond.ModeActive) {
		t.Errorf("operating mode = %v", result["operating_mode"])
	}
	restaurants, ok := result["restaurants"].([]interface{})
	if !ok || len(restaurants) != 3 {
		t.Errorf("restaurants = %v, want all 3 seeded", result["restaurants"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertHTTPStatus(t, http.StatusOK, rr.Code, "health")
	testutil.AssertJSONResponse(t, rr, models.APIStatusOK)
}

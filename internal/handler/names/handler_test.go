package names

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/names-api/backend/internal/model/name"
	"github.com/zhouzirui/names-api/backend/internal/model/name/nametest"
)

func setupRouter() (*chi.Mux, *name.MemoryStore) {
	clock := nametest.NewClock()
	store := name.NewMemoryStore(name.Seed(), name.WithMemoryClock(clock.Now))
	handler := New(store)

	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r, store
}

func doRequest(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeObject(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestListNames(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodGet, "/api/names", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var records []map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	for _, record := range records {
		if len(record) != 3 || record["lname"] == "" || record["timestamp"] == "" {
			t.Fatalf("unexpected record shape: %v", record)
		}
	}
}

func TestCreateThenGet(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodPost, "/api/names", []byte(`{"lname":"Lovelace","fname":"Ada"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	created := decodeObject(t, resp)

	resp = doRequest(r, http.MethodGet, "/api/names/Lovelace", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	got := decodeObject(t, resp)
	if got["fname"] != "Ada" || got["lname"] != "Lovelace" {
		t.Fatalf("unexpected record: %v", got)
	}
	if got["timestamp"] != created["timestamp"] {
		t.Fatalf("timestamp changed: %s -> %s", created["timestamp"], got["timestamp"])
	}
}

func TestCreateIgnoresClientTimestamp(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodPost, "/api/names", []byte(`{"lname":"Hopper","fname":"Grace","timestamp":"1906-12-09 00:00:00"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if got := decodeObject(t, resp); got["timestamp"] == "1906-12-09 00:00:00" {
		t.Fatal("client supplied timestamp was stored")
	}
}

func TestCreateRejectsInvalidBodies(t *testing.T) {
	r, _ := setupRouter()

	cases := map[string]string{
		"malformed":     `{"lname":`,
		"empty":         ``,
		"missing lname": `{"fname":"Ada"}`,
		"missing fname": `{"lname":"Lovelace"}`,
		"wrong type":    `{"lname":42,"fname":"Ada"}`,
	}

	for label, body := range cases {
		t.Run(label, func(t *testing.T) {
			resp := doRequest(r, http.MethodPost, "/api/names", []byte(body))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			if got := decodeObject(t, resp); got["error"] == "" {
				t.Fatalf("expected error envelope, got %v", got)
			}
		})
	}
}

func TestGetMissingName(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodGet, "/api/names/Nobody", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if got := decodeObject(t, resp); got["error"] != name.ErrNotFound.Error() {
		t.Fatalf("unexpected error body: %v", got)
	}
}

func TestUpdateDeleteScenario(t *testing.T) {
	r, _ := setupRouter()

	before := decodeObject(t, doRequest(r, http.MethodGet, "/api/names/Farrell", nil))

	resp := doRequest(r, http.MethodPut, "/api/names/Farrell", []byte(`{"fname":"Douglas"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	updated := decodeObject(t, resp)
	if updated["lname"] != "Farrell" || updated["fname"] != "Douglas" {
		t.Fatalf("unexpected record: %v", updated)
	}
	if updated["timestamp"] <= before["timestamp"] {
		t.Fatalf("timestamp not refreshed: %s -> %s", before["timestamp"], updated["timestamp"])
	}

	resp = doRequest(r, http.MethodDelete, "/api/names/Farrell", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}

	resp = doRequest(r, http.MethodGet, "/api/names/Farrell", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestUpdateWithoutFirstNameKeepsIt(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodPut, "/api/names/Nye", []byte(`{}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if got := decodeObject(t, resp); got["fname"] != "Bill" {
		t.Fatalf("first name changed: %v", got)
	}
}

func TestUpdateRejectsRename(t *testing.T) {
	r, store := setupRouter()

	resp := doRequest(r, http.MethodPut, "/api/names/Nye", []byte(`{"lname":"Sagan","fname":"Carl"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	record, err := store.Get(context.Background(), "Nye")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if record.FirstName != "Bill" {
		t.Fatalf("rejected update was applied: %+v", record)
	}
}

func TestUpdateAndDeleteMissingName(t *testing.T) {
	r, _ := setupRouter()

	if resp := doRequest(r, http.MethodPut, "/api/names/Nobody", []byte(`{"fname":"X"}`)); resp.Code != http.StatusNotFound {
		t.Fatalf("PUT: expected 404, got %d", resp.Code)
	}
	if resp := doRequest(r, http.MethodDelete, "/api/names/Nobody", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("DELETE: expected 404, got %d", resp.Code)
	}
}

func TestEscapedLastName(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodPost, "/api/names", []byte(`{"lname":"AC/DC","fname":"Bon"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = doRequest(r, http.MethodGet, "/api/names/AC%2FDC", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeObject(t, resp); got["lname"] != "AC/DC" {
		t.Fatalf("unexpected record: %v", got)
	}
}

func TestPercentInLastName(t *testing.T) {
	r, _ := setupRouter()

	for _, body := range []string{
		`{"lname":"50%","fname":"Half"}`,
		`{"lname":"a%41","fname":"Literal"}`,
		`{"lname":"aA","fname":"Decoded"}`,
	} {
		if resp := doRequest(r, http.MethodPost, "/api/names", []byte(body)); resp.Code != http.StatusCreated {
			t.Fatalf("POST %s: expected 201, got %d", body, resp.Code)
		}
	}

	resp := doRequest(r, http.MethodGet, "/api/names/50%25", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("GET 50%%: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeObject(t, resp); got["lname"] != "50%" {
		t.Fatalf("unexpected record: %v", got)
	}

	resp = doRequest(r, http.MethodPut, "/api/names/a%2541", []byte(`{"fname":"Updated"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("PUT a%%41: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := decodeObject(t, resp); got["lname"] != "a%41" || got["fname"] != "Updated" {
		t.Fatalf("unexpected record: %v", got)
	}

	if resp := doRequest(r, http.MethodDelete, "/api/names/a%2541", nil); resp.Code != http.StatusNoContent {
		t.Fatalf("DELETE a%%41: expected 204, got %d", resp.Code)
	}
	if resp := doRequest(r, http.MethodGet, "/api/names/a%2541", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("GET deleted a%%41: expected 404, got %d", resp.Code)
	}

	resp = doRequest(r, http.MethodGet, "/api/names/aA", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("GET aA: expected 200, got %d", resp.Code)
	}
	if got := decodeObject(t, resp); got["fname"] != "Decoded" {
		t.Fatalf("aA was modified: %v", got)
	}
}

func TestUpdateValidatesBodyBeforeLookup(t *testing.T) {
	r, _ := setupRouter()

	for _, body := range []string{``, `{"fname":`} {
		if resp := doRequest(r, http.MethodPut, "/api/names/Nobody", []byte(body)); resp.Code != http.StatusBadRequest {
			t.Fatalf("PUT %q to missing name: expected 400, got %d", body, resp.Code)
		}
	}
	if resp := doRequest(r, http.MethodPut, "/api/names/Nobody", []byte(`{}`)); resp.Code != http.StatusNotFound {
		t.Fatalf("PUT {} to missing name: expected 404, got %d", resp.Code)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	r, _ := setupRouter()

	resp := doRequest(r, http.MethodPost, "/api/names/Farrell", []byte(`{}`))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

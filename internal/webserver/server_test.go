package webserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invoicedash/internal/endpoint"
	"invoicedash/internal/runtimecfg"
	"invoicedash/internal/storage"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		case "/invoices/open":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"invoice_number":"INV-0001"}]`))
		case "/reports/plain":
			w.Write([]byte("plain report"))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, store *storage.Store) *Server {
	t.Helper()
	backendSrv := fakeBackend(t)
	resolver := endpoint.NewResolver(
		runtimecfg.Runtime{BackendURL: backendSrv.URL},
		endpoint.Location{Scheme: "http", Hostname: "localhost"},
	)
	return New(resolver, store)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestConfigEndpoint(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/config", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	base, _ := body["backendUrl"].(string)
	if !strings.HasPrefix(base, "http://127.0.0.1:") {
		t.Errorf("backendUrl = %q", base)
	}
	if body["backendDisplay"] != base {
		t.Errorf("backendDisplay = %v, want origin of %q", body["backendDisplay"], base)
	}
}

func TestHealthActionEndpoint(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/health", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["state"] != "success" || body["structured"] != true {
		t.Fatalf("body = %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data["status"] != "ok" {
		t.Errorf("data = %v", data)
	}
}

func TestOpenItemsEndpointValidation(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/open-items?organization_id=abc", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["state"] != "error" {
		t.Errorf("body = %v", body)
	}
}

func TestOpenItemsEndpointSuccess(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/open-items?organization_id=7", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	items, _ := body["data"].([]any)
	if len(items) != 1 {
		t.Errorf("data = %v", body["data"])
	}
}

func TestConsoleEndpointPlainText(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/console?path=/reports/plain", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}

	body := decodeBody(t, resp)
	if body["structured"] != false || body["text"] != "plain report" {
		t.Errorf("body = %v", body)
	}
}

func TestConsoleEndpointUpstreamError(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/console?path=/missing", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "404") || !strings.Contains(msg, "not found") {
		t.Errorf("message = %q", msg)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	app := newTestServer(t, store).App()

	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/actions/health", nil), -1); err != nil {
		t.Fatalf("health action: %v", err)
	}
	if err := store.Flush(2 * time.Second); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/history?action=health", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0]["outcome"] != "ok" {
		t.Errorf("items = %v", items)
	}
}

func TestHistoryEndpointDisabled(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/history", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexPageServed(t *testing.T) {
	app := newTestServer(t, nil).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Invoice Backend Dashboard") {
		t.Error("index page missing dashboard markup")
	}
}

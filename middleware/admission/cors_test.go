package admission

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS_PreflightShortCircuits(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	h := CORS(CORSOptions{})(next)

	r := httptest.NewRequest(http.MethodOptions, "http://example/chat", nil)
	r.Header.Set("Origin", "http://frontend.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if calls != 0 {
		t.Fatalf("expected preflight not to reach next handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected Allow-Origin=*, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("expected Allow-Methods header to be set")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatalf("expected Allow-Headers header to be set")
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age=600, got %q", got)
	}
}

func TestCORS_BrowserRequestGetsAllowOriginAndProceeds(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := CORS(CORSOptions{AllowedOrigin: "http://frontend.example"})(next)

	r := httptest.NewRequest(http.MethodPost, "http://example/chat", nil)
	r.Header.Set("Origin", "http://frontend.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if calls != 1 {
		t.Fatalf("expected next handler to run once, got %d", calls)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://frontend.example" {
		t.Fatalf("expected configured Allow-Origin, got %q", got)
	}
}

func TestCORS_NonBrowserRequestIsUntouched(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := CORS(CORSOptions{})(next)

	// sem header Origin => nenhum header CORS na resposta
	r := httptest.NewRequest(http.MethodGet, "http://example/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS headers, got Allow-Origin=%q", got)
	}
}

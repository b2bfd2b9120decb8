package admission

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbot-gateway/middleware/admission/application"
	"chatbot-gateway/middleware/admission/infra"
)

func TestAuth_AllowsWithCorrectToken(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := Auth(AuthOptions{Service: application.AuthService{Secret: "abc123"}})(next)

	r := httptest.NewRequest(http.MethodPost, "http://example/chat", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
}

func TestAuth_RejectsBeforeProtectedLogic(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not run on auth failure")
	})

	h := Auth(AuthOptions{Service: application.AuthService{Secret: "abc123"}})(next)

	cases := []struct {
		name   string
		header string
		detail string
	}{
		{"missing", "", "authorization header missing"},
		{"malformed", "abc123", "malformed authorization header"},
		{"wrong scheme", "Basic abc123", "malformed authorization header"},
		{"wrong token", "Bearer abc124", "invalid or unauthorized token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "http://example/chat", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Fatalf("expected WWW-Authenticate=Bearer, got %q", got)
			}
			if body := w.Body.String(); !strings.Contains(body, tc.detail) {
				t.Fatalf("expected body to mention %q, got %q", tc.detail, body)
			}
		})
	}
}

func TestAuth_RecordsDenialReason(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Auth(AuthOptions{
		Service: application.AuthService{Secret: "abc123"},
		Stats:   stats,
	})(next)

	r := httptest.NewRequest(http.MethodPost, "http://example/chat", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := stats.ByReason()["auth_missing"]; got != 1 {
		t.Fatalf("expected 1 denial with reason auth_missing, got %d", got)
	}
}

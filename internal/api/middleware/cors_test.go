package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{name: "allow all", origin: "https://a.example", wantHeader: "*"},
		{name: "listed origin", origins: []string{"https://a.example"}, origin: "https://a.example", wantHeader: "https://a.example"},
		{name: "unlisted origin", origins: []string{"https://a.example"}, origin: "https://evil.example", wantHeader: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.origins, okHandler()).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Fatalf("Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected pass-through, got %d", rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scan", nil)
	rec := httptest.NewRecorder()
	CORS(nil, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if called {
		t.Fatal("preflight must not reach the handler")
	}
}

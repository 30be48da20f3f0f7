package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authTarget(apiKey string) http.Handler {
	return Auth(apiKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		header     string
		value      string
		wantStatus int
	}{
		{"disabled when no key configured", "", "", "", http.StatusNoContent},
		{"valid bearer token", "secret", "Authorization", "Bearer secret", http.StatusNoContent},
		{"bearer scheme is case-insensitive", "secret", "Authorization", "bearer secret", http.StatusNoContent},
		{"valid api key header", "secret", "X-API-Key", "secret", http.StatusNoContent},
		{"missing token", "secret", "", "", http.StatusUnauthorized},
		{"wrong token", "secret", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"basic scheme rejected", "secret", "Authorization", "Basic secret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			authTarget(tt.apiKey).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

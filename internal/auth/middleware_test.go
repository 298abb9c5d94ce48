package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// dummyHandler returns a simple 200 OK handler used as the "next" handler in middleware tests.
func dummyHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func Test_NewAuthMiddleware_Cases(t *testing.T) {
	const correctToken = "correct-token"

	tests := []struct {
		name           string
		configToken    string
		authHeader     string
		setAuthHeader  bool
		wantStatusCode int
	}{
		{
			name:           "valid token passes through",
			configToken:    correctToken,
			authHeader:     "Bearer correct-token",
			setAuthHeader:  true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing header returns 401",
			configToken:    correctToken,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong token returns 401",
			configToken:    correctToken,
			authHeader:     "Bearer wrong-token",
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token prefix of the real one returns 401",
			configToken:    correctToken,
			authHeader:     "Bearer correct",
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "lowercase scheme returns 401",
			configToken:    correctToken,
			authHeader:     "bearer correct-token",
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "double space returns 401",
			configToken:    correctToken,
			authHeader:     "Bearer  correct-token",
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty bearer value returns 401",
			configToken:    correctToken,
			authHeader:     "Bearer ",
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "raw token without scheme returns 401",
			configToken:    correctToken,
			authHeader:     correctToken,
			setAuthHeader:  true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "empty config disables auth",
			configToken:    "",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "empty config ignores any header",
			configToken:    "",
			authHeader:     "Bearer whatever",
			setAuthHeader:  true,
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewAuthMiddleware(tt.configToken, zerolog.Nop())(dummyHandler(&called))

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.setAuthHeader {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatusCode)
			}
			wantCalled := tt.wantStatusCode == http.StatusOK
			if called != wantCalled {
				t.Errorf("next handler called = %v, want %v", called, wantCalled)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 response is missing WWW-Authenticate")
			}
		})
	}
}

func Test_NewAuthMiddleware_LogsRejectionWithoutCredential(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	called := false
	handler := NewAuthMiddleware("secret", logger)(dummyHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer leaked-guess")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "rejected unauthenticated request") {
		t.Errorf("log output = %q, want rejection message", out)
	}
	if strings.Contains(out, "leaked-guess") {
		t.Error("log output must not contain the presented token")
	}
}

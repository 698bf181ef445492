package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestBuildCSPHeader(t *testing.T) {
	tests := []struct {
		name string
		cfg  CSPConfig
		want string
	}{
		{"empty", CSPConfig{}, ""},
		{"api", APICSPConfig(), "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"},
		{"connect", CSPConfig{DefaultSrc: []string{"'self'"}, ConnectSrc: []string{"'self'", "wss:"}}, "default-src 'self'; connect-src 'self' wss:"},
	}
	for _, tt := range tests {
		if got := tt.cfg.BuildCSPHeader(); got != tt.want {
			t.Errorf("%s: BuildCSPHeader() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(APICSPConfig())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
		"Content-Security-Policy": APICSPConfig().BuildCSPHeader(),
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	rec = httptest.NewRecorder()
	SecurityHeaders(CSPConfig{})(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, set := rec.Header()["Content-Security-Policy"]; set {
		t.Error("empty CSP should not set the header")
	}
}

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"Application/JSON; charset=utf-8", true},
		{"text/plain", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateContentType(tt.ct, "application/json"); got != tt.want {
			t.Errorf("ValidateContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		ct     string
		want   int
	}{
		{"json post", http.MethodPost, `{}`, "application/json", http.StatusOK},
		{"text post", http.MethodPost, `{}`, "text/plain", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/references", strings.NewReader(tt.body))
		if tt.ct != "" {
			req.Header.Set("Content-Type", tt.ct)
		}
		rec := httptest.NewRecorder()
		RequireJSON(ok).ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestMaxBytes(t *testing.T) {
	var readErr error
	h := MaxBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if readErr == nil || !strings.Contains(readErr.Error(), "too large") {
		t.Errorf("read error = %v, want request body too large", readErr)
	}
}

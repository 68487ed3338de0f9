package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/secureport/internal/config"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://secureport.example"}}))
	r.POST("/api/contact", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://secureport.example")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://secureport.example" {
		t.Fatalf("unexpected allow origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("POST should be allowed")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req2.Header.Set(requestIDHeader, strings.Repeat("x", 200))
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" || len(generated) > 128 {
		t.Fatalf("oversized request id should be replaced, got %q", generated)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecurityHeadersMiddleware(config.SecurityHeadersConfig{Enabled: true, HSTS: true}, "/api/contact"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("X-Frame-Options missing")
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "https://www.google.com") {
		t.Fatalf("CSP should allow the captcha provider, got %q", w.Header().Get("Content-Security-Policy"))
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS header missing")
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "connect-src 'self';") {
		t.Fatalf("same-origin gateway should keep connect-src self, got %q", w.Header().Get("Content-Security-Policy"))
	}

	r2 := gin.New()
	r2.Use(SecurityHeadersMiddleware(config.SecurityHeadersConfig{}, ""))
	r2.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w2 := httptest.NewRecorder()
	r2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	if w2.Header().Get("Content-Security-Policy") != "" {
		t.Fatalf("disabled security headers should not be set")
	}
}

func TestSecurityHeadersAllowCrossOriginGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecurityHeadersMiddleware(config.SecurityHeadersConfig{Enabled: true}, "https://api.secureport.example/api/contact"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := w.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "connect-src 'self' https://api.secureport.example;") {
		t.Fatalf("cross-origin gateway should be allowed in connect-src, got %q", csp)
	}
}

func TestGatewayOrigin(t *testing.T) {
	cases := map[string]string{
		"":                                    "",
		"/api/contact":                        "",
		"https://api.example.com/api/contact": "https://api.example.com",
		"http://localhost:8081/contact":       "http://localhost:8081",
		"javascript:alert(1)":                 "",
	}
	for raw, want := range cases {
		if got := gatewayOrigin(raw); got != want {
			t.Fatalf("gatewayOrigin(%q) want %q got %q", raw, want, got)
		}
	}
}

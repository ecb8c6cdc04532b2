package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware(t *testing.T) {
	s := &Server{corsOrigin: "https://shop.example"}
	called := false
	h := s.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodOptions, "/scan", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, called, "preflight does not reach the handler")
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newServer(Config{RequestsPerMinute: 2}, &fakeScanner{})
	h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for range 2 {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "minute", w.Header().Get("X-RateLimit-Type"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	// another client is unaffected
	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware_SpoofedForwardedForIsIgnored(t *testing.T) {
	s := newServer(Config{RequestsPerMinute: 1}, &fakeScanner{})
	h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/scan", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		w := httptest.NewRecorder()
		h(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_TrustedProxyForwardsClients(t *testing.T) {
	s := newServer(Config{RequestsPerMinute: 1, TrustedProxies: []string{"10.1.0.0/16"}}, &fakeScanner{})
	h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/scan", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", client+", 10.1.2.3")
		w := httptest.NewRecorder()
		h(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code, client)
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	s := newServer(Config{}, &fakeScanner{})
	require.Nil(t, s.rateLimiter)
	h := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	for range 100 {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestClientIP(t *testing.T) {
	s := newServer(Config{TrustedProxies: []string{"9.9.9.9", "fd00::/8"}}, &fakeScanner{})

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list from trusted proxy", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip from trusted proxy", map[string]string{"X-Real-IP": " 4.3.2.1 "}, "9.9.9.9:1", "4.3.2.1"},
		{"trusted ipv6 range", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "[fd00::1]:80", "1.2.3.4"},
		{"trusted proxy without headers", nil, "9.9.9.9:1", "9.9.9.9"},
		{"forwarded list from untrusted peer", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "8.8.8.8:1", "8.8.8.8"},
		{"real ip from untrusted peer", map[string]string{"X-Real-IP": "4.3.2.1"}, "8.8.8.8:1", "8.8.8.8"},
		{"remote addr", nil, "9.9.9.8:1234", "9.9.9.8"},
		{"remote without port", nil, "9.9.9.8", "9.9.9.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, s.clientIP(r))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.1", " 192.168.0.0/16 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "10.0.0.1/32", got[0].String())
	assert.Equal(t, "192.168.0.0/16", got[1].String())
	assert.Equal(t, "::1/128", got[2].String())

	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestNewServer_RejectsInvalidTrustedProxy(t *testing.T) {
	_, err := NewServer(Config{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}

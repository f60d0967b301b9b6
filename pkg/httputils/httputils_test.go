package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/constants"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:5555", nil, false, "203.0.113.7"},
		{"ignores forwarded when untrusted", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.1"}, false, "10.0.0.1"},
		{"first forwarded hop", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, true, "198.51.100.1"},
		{"real ip fallback", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.9"}, true, "198.51.100.9"},
		{"trusted without headers", "10.0.0.1:80", nil, true, "10.0.0.1"},
		{"ipv6", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Fatalf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetRetryAfter(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{59 * time.Second, "59"},
		{1500 * time.Millisecond, "2"},
		{0, "1"},
		{-time.Second, "1"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		SetRetryAfter(rec, tt.in)
		if got := rec.Header().Get("Retry-After"); got != tt.want {
			t.Errorf("SetRetryAfter(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAPIError_EchoesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "corr-1")
	rec := httptest.NewRecorder()

	WriteAPIError(rec, req, constants.ErrLinkNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get(CorrelationIDHeader); got != "corr-1" {
		t.Fatalf("correlation id = %q, want corr-1", got)
	}

	var body APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != constants.CodeLinkNotFound || body.CorrelationId != "corr-1" {
		t.Fatalf("unexpected body %+v", body)
	}
}

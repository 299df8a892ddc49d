package http

import (
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		userAgent  string
		suspicious bool
	}{
		{"normal expense post", "/expenses", "Go-http-client/1.1", false},
		{"curl is a legitimate client", "/expenses", "curl/8.5.0", false},
		{"path traversal", "/expenses/../etc/passwd", "Go-http-client/1.1", true},
		{"dotenv lookup", "/.env", "Mozilla/5.0", true},
		{"sqlmap agent", "/expenses", "sqlmap/1.7", true},
		{"scanner agent", "/reports", "acme-scanner", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "http://example.com"+tt.path, nil)
			req.Header.Set("User-Agent", tt.userAgent)

			metrics := &securityMetrics{}
			if got := detectSuspiciousRequest(req, metrics); got != tt.suspicious {
				t.Errorf("detectSuspiciousRequest() = %v, want %v", got, tt.suspicious)
			}

			var wantHits int64
			if tt.suspicious {
				wantHits = 1
			}
			if got := atomic.LoadInt64(&metrics.suspiciousRequests); got != wantHits {
				t.Errorf("suspiciousRequests = %d, want %d", got, wantHits)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct connection", "203.0.113.9:4321", "", "203.0.113.9"},
		{"forwarded via trusted proxy", "10.0.0.2:4321", "203.0.113.9", "203.0.113.9"},
		{"forwarded header from untrusted source is ignored", "203.0.113.9:4321", "198.51.100.1", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com/expenses", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

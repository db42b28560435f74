package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	return c, rec
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded chain wins over peer",
			xff:        "203.0.113.7, 10.0.0.1",
			remoteAddr: "10.0.0.1:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "garbage forwarded entry is skipped",
			xff:        "not-an-ip, 203.0.113.7",
			remoteAddr: "10.0.0.1:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "real ip header as fallback",
			realIP:     "198.51.100.4",
			remoteAddr: "10.0.0.1:54321",
			want:       "198.51.100.4",
		},
		{
			name:       "peer address with port stripped",
			remoteAddr: "192.0.2.10:8443",
			want:       "192.0.2.10",
		},
		{
			name:       "peer address without port",
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			if tt.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				c.Request.Header.Set("X-Real-IP", tt.realIP)
			}
			c.Request.RemoteAddr = tt.remoteAddr

			if got := getClientIP(c); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestLoggerAttachesLogger(t *testing.T) {
	c, _ := newTestContext(t)

	RequestLogger()(c)

	value, exists := c.Get("logger")
	if !exists {
		t.Fatal("no logger attached to the request context")
	}
	if _, ok := value.(*zap.Logger); !ok {
		t.Fatalf("context logger has type %T, want *zap.Logger", value)
	}
}

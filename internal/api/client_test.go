package api

import (
	"net/http/httptest"
	"testing"
)

func TestClientID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"no headers", nil, UnknownClient},
		{"forwarded for chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"forwarded for wins", map[string]string{"X-Forwarded-For": "198.51.100.1", "X-Real-IP": "192.0.2.9"}, "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "192.0.2.9"}, "192.0.2.9"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "2001:db8::1"}, "2001:db8::1"},
		{"blank first value falls through", map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "192.0.2.9"}, "192.0.2.9"},
		{"padded value", map[string]string{"X-Real-IP": "  192.0.2.10  "}, "192.0.2.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/analyze", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientID(r); got != tt.want {
				t.Errorf("ClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}

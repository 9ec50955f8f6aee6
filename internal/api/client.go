package api

import (
	"net/http"
	"strings"
)

// UnknownClient is the identity shared by requests that carry no forwarded address.
const UnknownClient = "unknown"

// clientHeaders are checked in priority order.
var clientHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

// ClientID derives the rate-limit identity of a request from its forwarded
// address headers. The first comma separated value of the first non-empty
// header wins.
func ClientID(r *http.Request) string {
	for _, name := range clientHeaders {
		v := r.Header.Get(name)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return UnknownClient
}

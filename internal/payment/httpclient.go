package payment

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient builds the outbound HTTP client for processor calls.
// http.DefaultClient has no timeout, so an unresponsive processor would
// stall the request forever; the explicit transport bounds every phase.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

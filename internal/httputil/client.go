// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net"
	"net/http"
	"time"
)

// NewStreamingClient returns a client for long transfers. timeout bounds
// connecting, the TLS handshake and waiting for response headers, but not
// reading the body, so a slow download that keeps making progress is never
// cut off. A zero timeout leaves every phase unbounded.
func NewStreamingClient(timeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		tr.DialContext = (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		tr.TLSHandshakeTimeout = timeout
		tr.ResponseHeaderTimeout = timeout
	}
	return &http.Client{Transport: tr}
}

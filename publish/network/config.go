package network

import (
	"net/http"
	"time"
)

// DefaultChunkSize is the chunk width used when the caller does not override
// it. It also sets the threshold below which a progress-agnostic upload is
// sent as a single plain request.
const DefaultChunkSize int64 = 5 * 1024 * 1024

// DefaultHTTPClient creates the HTTP client used for chunk transmission.
// Chunk calls are never retried automatically, so this is a plain client
// rather than a retryable one; per-chunk timeouts are handled via context.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxConnsPerHost:     4,
			IdleConnTimeout:     10 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
			Proxy:               http.ProxyFromEnvironment,
		},
	}
}

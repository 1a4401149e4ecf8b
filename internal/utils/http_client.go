package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps a resty client for the CLI adapter.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client with its own connection pool. Retries are
// off: a view consumes the secret and must not be repeated blindly.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New().SetRetryCount(0)}
}

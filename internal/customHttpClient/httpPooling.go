package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocsRAG/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetPooledClient returns an http client that reuses connections,
// the embedder makes many small calls so this avoids handshake latency
func GetPooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}

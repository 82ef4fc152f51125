package factory

import (
	"net"
	"net/http"
	"time"

	"llmjobs/internal/config"
	"llmjobs/internal/provider"
	openaiProvider "llmjobs/internal/provider/openai"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// New constructs the upstream provider described by cfg.
func New(cfg config.UpstreamConfig) (provider.Provider, error) {
	client := newHTTPClient(cfg.Timeout, cfg.Headers)
	return openaiProvider.New("openai", openaiProvider.Config{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.BaseURL,
		Organization: cfg.Organization,
	}, client)
}

// newHTTPClient builds a client with bounded timeouts. A zero timeout leaves
// the overall request unbounded.
func newHTTPClient(timeout time.Duration, headers config.Headers) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var rt http.RoundTripper = transport
	if len(headers) > 0 {
		rt = &headerTransport{base: transport, headers: headers}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}

// headerTransport adds configured headers to every outbound request.
type headerTransport struct {
	base    http.RoundTripper
	headers config.Headers
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}

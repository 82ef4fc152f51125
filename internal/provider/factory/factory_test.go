package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmjobs/internal/config"
	"llmjobs/internal/models"
	"llmjobs/internal/provider"
)

func TestNewSendsConfiguredHeaders(t *testing.T) {
	var gotTenant, gotAuth, gotOrg string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.Header.Get("X-Tenant")
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get("OpenAI-Organization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	p, err := New(config.UpstreamConfig{
		APIKey:       "sk-test",
		BaseURL:      srv.URL,
		Organization: "org-1",
		Timeout:      5 * time.Second,
		Headers:      config.Headers{"X-Tenant": "acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	list, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, "acme", gotTenant)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "org-1", gotOrg)
}

func TestTimeoutSurfacesAsUpstreamError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p, err := New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), models.ChatRequest{
		Model:    "gpt-3.5-turbo",
		Messages: []models.Message{{Content: "Hello"}},
	})
	require.Error(t, err)
	assert.True(t, provider.IsUpstream(err))
}

func TestNewHTTPClientWithoutHeadersUsesTransportDirectly(t *testing.T) {
	client := newHTTPClient(time.Second, nil)
	_, wrapped := client.Transport.(*headerTransport)
	assert.False(t, wrapped)
	assert.Equal(t, time.Second, client.Timeout)
}

package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingDoer fails the test if any request goes out, for asserting
// precondition short circuits.
type countingDoer struct {
	calls atomic.Int64
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"data":[]}`)),
		Header:     http.Header{},
	}, nil
}

type erroringDoer struct{}

func (erroringDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func localSettings(p Provider, ps ProviderSettings) Settings {
	return Settings{
		Mode:      ModeLocal,
		Providers: map[Provider]ProviderSettings{p: ps},
	}
}

func TestListModelsMissingCredential(t *testing.T) {
	for _, p := range Providers() {
		doer := &countingDoer{}
		r := NewResolver(localSettings(p, ProviderSettings{}), doer, zap.NewNop())

		models, err := r.ListModels(context.Background(), p)
		require.NoError(t, err, "provider %s", p)
		assert.Empty(t, models, "provider %s", p)
		assert.Zero(t, doer.calls.Load(), "provider %s issued a request", p)
	}
}

func TestListModelsMissingAccessPassword(t *testing.T) {
	doer := &countingDoer{}
	r := NewResolver(Settings{Mode: ModeProxy, GatewayURL: "http://gw"}, doer, zap.NewNop())

	models, err := r.ListModels(context.Background(), ProviderOpenAI)
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Zero(t, doer.calls.Load())
}

func TestListModelsUnknownProvider(t *testing.T) {
	doer := &countingDoer{}
	r := NewResolver(Settings{Mode: ModeLocal}, doer, zap.NewNop())

	models, err := r.ListModels(context.Background(), Provider("mystery"))
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Zero(t, doer.calls.Load())
}

func TestListModelsCompatibleWithoutBaseURL(t *testing.T) {
	doer := &countingDoer{}
	settings := localSettings(ProviderOpenAICompatible, ProviderSettings{APIKey: "sk"})
	r := NewResolver(settings, doer, zap.NewNop())

	models, err := r.ListModels(context.Background(), ProviderOpenAICompatible)
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Zero(t, doer.calls.Load())
}

func TestListModelsLocalMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4"},{"id":"whisper-1"}]}`))
	}))
	defer server.Close()

	settings := localSettings(ProviderOpenAI, ProviderSettings{
		APIKey:  "sk-test",
		BaseURL: server.URL,
	})
	r := NewResolver(settings, nil, zap.NewNop())

	models, err := r.ListModels(context.Background(), ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4"}, models)
}

func TestListModelsBaseURLAlreadyHasPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	settings := localSettings(ProviderDeepSeek, ProviderSettings{
		APIKey:  "sk",
		BaseURL: server.URL + "/v1",
	})
	r := NewResolver(settings, nil, zap.NewNop())

	_, err := r.ListModels(context.Background(), ProviderDeepSeek)
	require.NoError(t, err)
	assert.Equal(t, "/v1/models", gotPath, "prefix must not be duplicated")
}

func TestListModelsProxyMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/google/v1beta/models", r.URL.Path)
		assert.Equal(t, "secret-pw", r.Header.Get("x-goog-api-key"))

		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-pro","supportedGenerationMethods":["generateContent"]}]}`))
	}))
	defer server.Close()

	settings := Settings{
		Mode:           ModeProxy,
		GatewayURL:     server.URL,
		AccessPassword: "secret-pw",
		// A proxy override must be ignored in proxy mode.
		Providers: map[Provider]ProviderSettings{
			ProviderGoogle: {BaseURL: "http://should-not-be-used"},
		},
	}
	r := NewResolver(settings, nil, zap.NewNop())

	models, err := r.ListModels(context.Background(), ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-pro"}, models)
}

func TestListModelsTransportFailure(t *testing.T) {
	settings := localSettings(ProviderOpenAI, ProviderSettings{APIKey: "sk"})
	r := NewResolver(settings, erroringDoer{}, zap.NewNop())

	_, err := r.ListModels(context.Background(), ProviderOpenAI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestListModelsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	settings := localSettings(ProviderOpenAI, ProviderSettings{
		APIKey:  "sk",
		BaseURL: server.URL,
	})
	r := NewResolver(settings, nil, zap.NewNop())

	_, err := r.ListModels(context.Background(), ProviderOpenAI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestListModelsOllamaLocalNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:8b"}]}`))
	}))
	defer server.Close()

	settings := localSettings(ProviderOllama, ProviderSettings{
		APIKey:  "anything",
		BaseURL: server.URL,
	})
	r := NewResolver(settings, nil, zap.NewNop())

	models, err := r.ListModels(context.Background(), ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b"}, models)
}

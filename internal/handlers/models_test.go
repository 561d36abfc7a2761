package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
)

type stubDoer struct {
	body  string
	calls int
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Header:     http.Header{},
	}, nil
}

func newModelsRouter(doer catalog.Doer) (*chi.Mux, *catalog.Catalog) {
	settings := catalog.Settings{
		Mode: catalog.ModeLocal,
		Providers: map[catalog.Provider]catalog.ProviderSettings{
			catalog.ProviderOpenRouter: {APIKey: "sk"},
		},
	}
	cat := catalog.New(catalog.NewResolver(settings, doer, zap.NewNop()))

	h := NewModelsHandler(zap.NewNop(), cat)
	r := chi.NewRouter()
	r.Get("/api/models/{provider}", h.RefreshModels)
	r.Post("/api/models/{provider}/select", h.SelectProvider)
	return r, cat
}

func TestRefreshModelsReturnsList(t *testing.T) {
	doer := &stubDoer{body: `{"data":[{"id":"model-a"}]}`}
	r, cat := newModelsRouter(doer)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models/openrouter", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"object":"list","data":[{"id":"model-a","object":"model"}]}`, rec.Body.String())
	assert.Equal(t, []string{"model-a"}, cat.Current())
}

func TestRefreshModelsUnknownProvider(t *testing.T) {
	doer := &stubDoer{body: `{"data":[{"id":"model-a"}]}`}
	r, cat := newModelsRouter(doer)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models/openrouter", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"model-a"}, cat.Current())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models/mystery", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	// The held list survives and no extra fetch went out.
	assert.Equal(t, []string{"model-a"}, cat.Current())
	assert.Equal(t, 1, doer.calls)
}

func TestSelectProviderUnknown(t *testing.T) {
	r, _ := newModelsRouter(&stubDoer{body: `{"data":[]}`})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/models/mystery/select", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

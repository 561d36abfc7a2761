package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modelcat/modelcat/internal/catalog"
	"github.com/modelcat/modelcat/internal/middleware"
)

// Handler is the server side of proxy mode. It validates the shared
// access password, swaps it for the server-held provider credential and
// forwards the request to the provider upstream unchanged otherwise.
type Handler struct {
	logger   *zap.Logger
	client   catalog.Doer
	settings catalog.Settings
}

func NewHandler(logger *zap.Logger, client catalog.Doer, settings catalog.Settings) *Handler {
	if client == nil {
		client = &http.Client{}
	}
	return &Handler{
		logger:   logger,
		client:   client,
		settings: settings,
	}
}

// Forward handles /api/ai/{provider}/* requests.
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	provider, ok := catalog.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		h.sendError(w, http.StatusNotFound, "unknown provider")
		return
	}

	if !h.authorized(r) {
		h.sendError(w, http.StatusUnauthorized, "invalid access password")
		return
	}

	ps := h.settings.Providers[provider]
	base := ps.BaseURL
	if base == "" {
		base = provider.DefaultBaseURL()
	}
	if base == "" {
		h.sendError(w, http.StatusBadGateway, "provider has no upstream configured")
		return
	}

	rest := chi.URLParam(r, "*")
	url := strings.TrimSuffix(base, "/") + "/" + rest
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		h.sendError(w, http.StatusBadGateway, "failed to build upstream request")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	// The client's password header is replaced with the server-held
	// provider credential, one key picked from the pool per request.
	credential := catalog.PickCredential(ps.APIKey)
	for k, v := range catalog.AuthHeaders(provider, catalog.ModeLocal, credential) {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("upstream request failed",
			zap.String("provider", string(provider)),
			zap.String("url", url),
			zap.Error(err))
		h.sendError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	middleware.RecordGatewayForward(string(provider), resp.StatusCode)

	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug("copying upstream response failed", zap.Error(err))
	}
}

// authorized checks the shared access password against whichever auth
// header the client's provider convention uses.
func (h *Handler) authorized(r *http.Request) bool {
	password := strings.TrimSpace(h.settings.AccessPassword)
	if password == "" {
		return false
	}
	for _, presented := range presentedSecrets(r) {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(password)) == 1 {
			return true
		}
	}
	return false
}

func presentedSecrets(r *http.Request) []string {
	var secrets []string
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		secrets = append(secrets, strings.TrimPrefix(auth, "Bearer "))
	}
	if key := r.Header.Get("x-goog-api-key"); key != "" {
		secrets = append(secrets, key)
	}
	if key := r.Header.Get("x-api-key"); key != "" {
		secrets = append(secrets, key)
	}
	return secrets
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    http.StatusText(status),
		},
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}

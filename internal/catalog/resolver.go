package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrFetchFailed wraps transport and upstream-status failures so callers
// can distinguish them from the silent empty-list preconditions.
var ErrFetchFailed = errors.New("model list fetch failed")

// Doer is the injected HTTP transport capability.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Resolver knows, for each supported provider, which credential and
// endpoint apply in the current operating mode, and fetches the
// provider's model catalog through the injected transport.
type Resolver struct {
	settings Settings
	client   Doer
	logger   *zap.Logger
}

func NewResolver(settings Settings, client Doer, logger *zap.Logger) *Resolver {
	if client == nil {
		// No timeout of our own; the transport's defaults govern.
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		settings: settings,
		client:   client,
		logger:   logger,
	}
}

// ListModels fetches and normalizes the provider's model catalog.
//
// Precondition failures never error: an unknown provider, a missing
// credential for the active mode, or an unresolvable base URL all
// return an empty list without issuing a request. Transport failures
// and non-2xx upstream statuses surface as ErrFetchFailed.
func (r *Resolver) ListModels(ctx context.Context, provider Provider) ([]string, error) {
	spec, ok := specs[provider]
	if !ok {
		r.logger.Debug("unknown provider, skipping fetch", zap.String("provider", string(provider)))
		return []string{}, nil
	}

	url, secret, ok := r.resolveTarget(provider, spec)
	if !ok {
		return []string{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	for k, v := range spec.authHeaders(r.settings.Mode, secret) {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, provider, resp.StatusCode)
	}

	models := spec.parse(body)
	r.logger.Debug("model list fetched",
		zap.String("provider", string(provider)),
		zap.Int("count", len(models)))
	return models, nil
}

// resolveTarget selects the request URL and the active secret for the
// current mode. ok=false means a precondition failed and no request
// should be made.
func (r *Resolver) resolveTarget(provider Provider, spec providerSpec) (url, secret string, ok bool) {
	switch r.settings.Mode {
	case ModeProxy:
		password := strings.TrimSpace(r.settings.AccessPassword)
		if password == "" {
			r.logger.Debug("access password not set", zap.String("provider", string(provider)))
			return "", "", false
		}
		// The forwarding path is fixed per provider; user proxy
		// overrides do not apply in this mode.
		base := strings.TrimSuffix(r.settings.GatewayURL, "/")
		return base + provider.ProxyPath(), password, true
	default:
		ps := r.settings.Providers[provider]
		credential := PickCredential(ps.APIKey)
		if credential == "" {
			r.logger.Debug("credential not set", zap.String("provider", string(provider)))
			return "", "", false
		}
		base := ps.BaseURL
		if base == "" {
			base = spec.defaultBaseURL
		}
		if base == "" {
			r.logger.Debug("no base URL configured", zap.String("provider", string(provider)))
			return "", "", false
		}
		return CompletePath(base, spec.apiPrefix) + spec.listPath, credential, true
	}
}

package catalog

import (
	"math/rand"
	"strings"
)

// Provider identifies one of the supported model APIs.
type Provider string

const (
	ProviderGoogle           Provider = "google"
	ProviderOpenRouter       Provider = "openrouter"
	ProviderOpenAI           Provider = "openai"
	ProviderAnthropic        Provider = "anthropic"
	ProviderDeepSeek         Provider = "deepseek"
	ProviderXAI              Provider = "xai"
	ProviderOpenAICompatible Provider = "openaicompatible"
	ProviderOllama           Provider = "ollama"
)

// Mode selects how requests are credentialed and routed.
type Mode string

const (
	// ModeLocal talks to the provider endpoint directly using a
	// locally held provider credential.
	ModeLocal Mode = "local"
	// ModeProxy forwards everything through the gateway's /api/ai
	// paths using a single shared access password.
	ModeProxy Mode = "proxy"
)

// ProviderSettings holds the per-provider client configuration.
// APIKey may contain several comma-separated keys; one is picked at
// random per request.
type ProviderSettings struct {
	APIKey  string
	BaseURL string
}

// Settings is the full configuration snapshot the resolver operates on.
// It is passed in explicitly; the catalog never reads global state.
type Settings struct {
	Mode           Mode
	GatewayURL     string
	AccessPassword string
	Providers      map[Provider]ProviderSettings
}

type providerSpec struct {
	defaultBaseURL string
	apiPrefix      string
	listPath       string
	authHeaders    func(mode Mode, secret string) map[string]string
	parse          func(body []byte) []string
}

func bearerAuth(_ Mode, secret string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + secret}
}

func googleAuth(_ Mode, secret string) map[string]string {
	return map[string]string{"x-goog-api-key": secret}
}

func anthropicAuth(_ Mode, secret string) map[string]string {
	return map[string]string{
		"x-api-key":         secret,
		"Anthropic-Version": "2023-06-01",
		"anthropic-dangerous-direct-browser-access": "true",
	}
}

// The local Ollama daemon takes no credential; only the gateway
// password is sent in proxy mode.
func ollamaAuth(mode Mode, secret string) map[string]string {
	if mode == ModeProxy {
		return map[string]string{"Authorization": "Bearer " + secret}
	}
	return nil
}

var specs = map[Provider]providerSpec{
	ProviderGoogle: {
		defaultBaseURL: "https://generativelanguage.googleapis.com",
		apiPrefix:      "/v1beta",
		listPath:       "/models",
		authHeaders:    googleAuth,
		parse:          parseGoogleModels,
	},
	ProviderOpenRouter: {
		defaultBaseURL: "https://openrouter.ai/api",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    bearerAuth,
		parse:          parseDataIDs(nil),
	},
	ProviderOpenAI: {
		defaultBaseURL: "https://api.openai.com",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    bearerAuth,
		parse:          parseDataIDs(openAIFilter),
	},
	ProviderAnthropic: {
		defaultBaseURL: "https://api.anthropic.com",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    anthropicAuth,
		parse:          parseDataIDs(nil),
	},
	ProviderDeepSeek: {
		defaultBaseURL: "https://api.deepseek.com",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    bearerAuth,
		parse:          parseDataIDs(nil),
	},
	ProviderXAI: {
		defaultBaseURL: "https://api.x.ai",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    bearerAuth,
		parse:          parseDataIDs(xaiFilter),
	},
	ProviderOpenAICompatible: {
		// No meaningful default endpoint; a base URL must be configured.
		defaultBaseURL: "",
		apiPrefix:      "/v1",
		listPath:       "/models",
		authHeaders:    bearerAuth,
		parse:          parseDataIDs(nil),
	},
	ProviderOllama: {
		defaultBaseURL: "http://localhost:11434",
		apiPrefix:      "/api",
		listPath:       "/tags",
		authHeaders:    ollamaAuth,
		parse:          parseOllamaModels,
	},
}

// ParseProvider maps a raw identifier to a supported provider.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	_, ok := specs[p]
	return p, ok
}

// Providers returns the supported provider identifiers.
func Providers() []Provider {
	out := make([]Provider, 0, len(specs))
	for p := range specs {
		out = append(out, p)
	}
	return out
}

// ProxyPath returns the gateway forwarding path for the provider's
// model listing endpoint, e.g. /api/ai/google/v1beta/models.
func (p Provider) ProxyPath() string {
	spec, ok := specs[p]
	if !ok {
		return ""
	}
	return "/api/ai/" + string(p) + spec.apiPrefix + spec.listPath
}

// DefaultBaseURL returns the provider's stock endpoint, empty when the
// provider has none (openaicompatible).
func (p Provider) DefaultBaseURL() string {
	return specs[p].defaultBaseURL
}

// AuthHeaders builds the request headers for the provider in the given
// mode. The secret is the provider credential in local mode and the
// shared access password in proxy mode.
func AuthHeaders(p Provider, mode Mode, secret string) map[string]string {
	spec, ok := specs[p]
	if !ok {
		return nil
	}
	return spec.authHeaders(mode, secret)
}

// CompletePath returns a URL whose path ends with prefix, tolerating a
// base that already carries it. Exactly one join separator, never two.
func CompletePath(base, prefix string) string {
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, prefix) {
		return base
	}
	return base + prefix
}

// PickCredential splits a comma-delimited credential pool, shuffles it
// with an unbiased permutation and returns one entry. Spreads load over
// multiple keys without persistent affinity.
func PickCredential(pool string) string {
	keys := make([]string, 0, 4)
	for _, k := range strings.Split(pool, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	rand.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	return keys[0]
}

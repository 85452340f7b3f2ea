// Package doliclient provides the main entry point for creating Dolibarr API clients
package doliclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fivetwenty-io/dolibarr-client/internal/auth"
	"github.com/fivetwenty-io/dolibarr-client/internal/client"
	internalhttp "github.com/fivetwenty-io/dolibarr-client/internal/http"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

type settings struct {
	client.Options

	registerer prometheus.Registerer
}

// Option customizes credential resolution and instrumentation.
type Option func(*settings)

// WithAPIKey passes an explicit key. It wins over every other source.
func WithAPIKey(apiKey string) Option {
	return func(s *settings) {
		s.APIKey = apiKey
	}
}

// WithPrompt allows an interactive login through provider when no key is
// available. A nil provider prompts on the terminal.
func WithPrompt(provider doli.CredentialProvider) Option {
	return func(s *settings) {
		if provider == nil {
			provider = auth.NewTerminalPrompter()
		}

		s.AllowPrompt = true
		s.Provider = provider
	}
}

// WithPersist writes a key obtained by login to the key store.
func WithPersist(persist bool) Option {
	return func(s *settings) {
		s.Persist = persist
	}
}

// WithRefresh logs in even when a key is configured or stored.
// Combined with WithPersist it replaces a stale cached key.
func WithRefresh() Option {
	return func(s *settings) {
		s.Refresh = true
	}
}

// WithKeyStore replaces the store selected by Config.CredentialStore.
func WithKeyStore(store doli.KeyStore) Option {
	return func(s *settings) {
		s.Store = store
	}
}

// WithMetrics registers request counters and latency histograms with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

// StaticCredentials returns a provider for fixed credentials.
func StaticCredentials(login, password string) doli.CredentialProvider {
	return auth.StaticCredentials{Login: login, Password: password}
}

// New creates a new Dolibarr API client and resolves its API key.
func New(ctx context.Context, config *doli.Config, opts ...Option) (doli.Client, error) {
	if config == nil {
		return nil, doli.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, doli.ErrBaseURLRequired
	}

	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	normalized := *config
	normalized.BaseURL = normalizeBaseURL(config.BaseURL)

	if s.Store == nil && needsStore(&normalized, s) {
		store, closeStore, err := auth.NewKeyStoreFromConfig(&normalized)
		if err != nil {
			return nil, fmt.Errorf("opening credential store: %w", err)
		}

		defer closeStore()

		s.Store = store
	}

	if s.registerer != nil {
		s.Metrics = internalhttp.NewMetrics(s.registerer)
	}

	c, err := client.New(ctx, &normalized, s.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithAPIKey creates a new client with a base URL and a known API key.
func NewWithAPIKey(ctx context.Context, baseURL, apiKey string) (doli.Client, error) {
	return New(ctx, &doli.Config{BaseURL: baseURL}, WithAPIKey(apiKey))
}

// NewWithPassword creates a new client that logs in with login and password.
// The obtained key is not persisted.
func NewWithPassword(ctx context.Context, baseURL, login, password string) (doli.Client, error) {
	return New(ctx, &doli.Config{BaseURL: baseURL}, WithPrompt(StaticCredentials(login, password)))
}

// needsStore reports whether resolution can reach the key store.
func needsStore(config *doli.Config, s *settings) bool {
	return s.APIKey == "" && (config.APIKey == "" || s.Refresh)
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

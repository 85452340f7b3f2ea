package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// LoginFunc exchanges credentials for an API key.
type LoginFunc func(ctx context.Context, creds doli.Credentials) (string, error)

// ResolveOptions selects where the API key may come from.
type ResolveOptions struct {
	// ExplicitKey wins over everything else.
	ExplicitKey string
	// ConfiguredKey is the key loaded with the configuration.
	ConfiguredKey string
	// Refresh ignores configured and stored keys and goes straight to login.
	Refresh bool
	// Store is consulted when no key is configured, and written to when Persist is set.
	Store doli.KeyStore
	// AllowPrompt permits an interactive login.
	AllowPrompt bool
	// Persist writes a key obtained by login back to Store.
	Persist bool
	// Provider supplies login credentials.
	Provider doli.CredentialProvider
	Logger   doli.Logger
}

// Resolution is the outcome of credential resolution.
type Resolution struct {
	APIKey   string
	Strategy doli.Strategy
}

// Resolve picks exactly one strategy and returns the key it yields.
func Resolve(ctx context.Context, opts ResolveOptions, exchange LoginFunc) (*Resolution, error) {
	if opts.ExplicitKey != "" {
		return &Resolution{APIKey: opts.ExplicitKey, Strategy: doli.StrategyExplicit}, nil
	}

	if opts.Refresh {
		return login(ctx, opts, exchange)
	}

	if opts.ConfiguredKey != "" {
		return &Resolution{APIKey: opts.ConfiguredKey, Strategy: doli.StrategyCached}, nil
	}

	if opts.Store != nil {
		apiKey, err := opts.Store.LoadAPIKey(ctx)
		if err == nil && apiKey != "" {
			return &Resolution{APIKey: apiKey, Strategy: doli.StrategyCached}, nil
		}

		if err != nil && !errors.Is(err, doli.ErrKeyNotFound) {
			return nil, fmt.Errorf("loading cached API key: %w", err)
		}
	}

	return login(ctx, opts, exchange)
}

func login(ctx context.Context, opts ResolveOptions, exchange LoginFunc) (*Resolution, error) {
	if !opts.AllowPrompt {
		return nil, doli.ErrNoAPIKey
	}

	if opts.Provider == nil {
		return nil, doli.ErrNoCredentials
	}

	creds, err := opts.Provider.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", doli.ErrAuthentication, err)
	}

	apiKey, err := exchange(ctx, creds)
	if err != nil {
		return nil, err
	}

	if opts.Persist && opts.Store != nil {
		err = opts.Store.SaveAPIKey(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("caching API key: %w", err)
		}

		if opts.Logger != nil {
			opts.Logger.Debug("cached API key", map[string]interface{}{"login": creds.Login})
		}
	}

	return &Resolution{APIKey: apiKey, Strategy: doli.StrategyLogin}, nil
}

//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doliclient"
)

const requestTimeout = 30 * time.Second

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	BaseURL  string
	APIKey   string
	Login    string
	Password string
	NATSURL  string
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		BaseURL:  os.Getenv("DOLI_IT_BASE_URL"),
		APIKey:   os.Getenv("DOLI_IT_API_KEY"),
		Login:    os.Getenv("DOLI_IT_LOGIN"),
		Password: os.Getenv("DOLI_IT_PASSWORD"),
		NATSURL:  os.Getenv("DOLI_IT_NATS_URL"),
	}
}

// SkipIfMissingConfig skips test if no server is configured.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.BaseURL == "" {
		t.Skip("DOLI_IT_BASE_URL not set, skipping integration test")
	}
}

// SkipIfNoCredentials skips test if no login is configured.
func (config *TestConfig) SkipIfNoCredentials(t *testing.T) {
	t.Helper()

	config.SkipIfMissingConfig(t)

	if config.Login == "" || config.Password == "" {
		t.Skip("DOLI_IT_LOGIN or DOLI_IT_PASSWORD not set, skipping integration test")
	}
}

// NewKeyClient creates a client authenticated with the configured API key.
func (config *TestConfig) NewKeyClient(t *testing.T) doli.Client {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("DOLI_IT_API_KEY not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client, err := doliclient.NewWithAPIKey(ctx, config.BaseURL, config.APIKey)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	return client
}

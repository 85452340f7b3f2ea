package doli

import (
	"context"
	"net/http"
	"time"
)

// Strategy names how a client obtained its API key.
type Strategy string

const (
	// StrategyExplicit means the key was passed in by the caller.
	StrategyExplicit Strategy = "explicit"

	// StrategyCached means the key came from configuration or a key store.
	StrategyCached Strategy = "cached"

	// StrategyLogin means the key was obtained through the login endpoint.
	StrategyLogin Strategy = "login"
)

// Params are query parameters forwarded as-is. Scalar values are stringified,
// slices are sent as repeated keys.
type Params map[string]interface{}

// Request describes a single call against the REST API.
type Request struct {
	// Method defaults to GET.
	Method string
	// Endpoint is the path below the API prefix, e.g. "invoices".
	Endpoint string
	// Body is serialized as JSON when non-nil.
	Body interface{}
	// Params are appended to the URL query.
	Params Params
}

// Caller issues generic requests.
type Caller interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// ResourceClient provides the read endpoints.
type ResourceClient interface {
	Invoices(ctx context.Context, params Params) (*Response, error)
	ThirdParties(ctx context.Context, params Params) (*Response, error)
}

// Client is the ERP client. Its API key is resolved once at construction and
// stays fixed for the client's lifetime.
type Client interface {
	Caller
	ResourceClient

	// APIKey returns the credential resolved at construction.
	APIKey() string
	// Strategy returns how the credential was resolved.
	Strategy() Strategy
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a doli.Client.
//
// # Credential resolution
//
// A client picks exactly one strategy when it is built and keeps it:
//  1. An explicit key passed to the constructor.
//  2. APIKey, or a key already held by the configured key store.
//  3. Interactive login through a credential provider, when prompting is allowed.
//     The obtained key is written back to the key store when persistence is on.
//
// Without any of these the constructor fails with ErrAuthentication.
//
// # Timeouts and retries
//
// Calls block until the server answers or ctx is done. Timeout and RetryMax
// are zero by default, so a call is a single request with no deadline other
// than the one carried by ctx.
type Config struct {
	// BaseURL: root URL of the ERP, e.g. "https://erp.example.com". Required.
	BaseURL string
	// APIKey: optional pre-shared or cached API key.
	APIKey string

	// EnvFile: settings file the key is cached into by the dotenv store.
	EnvFile string
	// CredentialStore: "dotenv" (default) or "nats".
	CredentialStore string
	// NATSURL: server URL for the nats credential store.
	NATSURL string
	// NATSBucket: key-value bucket for the nats credential store.
	NATSBucket string

	// Timeout: per-request timeout. Zero means none.
	Timeout time.Duration
	// RetryMax: retries for transient failures. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPClient: optional underlying client, mostly for tests.
	HTTPClient *http.Client
}

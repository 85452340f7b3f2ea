package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/dolibarr-client/internal/auth"
	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/dolibarr-client/internal/http"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Client implements the doli.Client interface.
type Client struct {
	httpClient *internalhttp.Client
	baseURL    string
	logger     doli.Logger
	apiKey     string
	strategy   doli.Strategy
}

// Options are the construction inputs that are not part of doli.Config.
type Options struct {
	// APIKey is an explicit key that wins over every other source.
	APIKey string
	// Refresh forces a login even when a key is configured or stored.
	Refresh bool
	// AllowPrompt permits an interactive login when no key is available.
	AllowPrompt bool
	// Persist writes a key obtained by login to Store.
	Persist bool
	// Provider supplies login credentials.
	Provider doli.CredentialProvider
	// Store holds cached keys.
	Store doli.KeyStore
	// Metrics records request counts and latencies when set.
	Metrics *internalhttp.Metrics
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *doli.Config, opts Options) []internalhttp.Option {
	var httpOpts []internalhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, internalhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	// WithTimeout mutates the client installed by WithHTTPClient, so it goes last.
	httpOpts = append(httpOpts,
		internalhttp.WithHTTPClient(config.HTTPClient),
		internalhttp.WithTimeout(config.Timeout),
	)

	if opts.Metrics != nil {
		httpOpts = append(httpOpts, internalhttp.WithMetrics(opts.Metrics))
	}

	return httpOpts
}

// New creates a client and resolves its API key. Resolution may call the
// login endpoint, so New performs network I/O when no key is available.
func New(ctx context.Context, config *doli.Config, opts Options) (*Client, error) {
	if config == nil {
		return nil, doli.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, doli.ErrBaseURLRequired
	}

	client := &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
	}

	client.httpClient = internalhttp.NewClient(config.BaseURL, client, createHTTPClientOptions(config, opts)...)

	resolution, err := auth.Resolve(ctx, auth.ResolveOptions{
		ExplicitKey:   opts.APIKey,
		ConfiguredKey: config.APIKey,
		Refresh:       opts.Refresh,
		Store:         opts.Store,
		AllowPrompt:   opts.AllowPrompt,
		Persist:       opts.Persist,
		Provider:      opts.Provider,
		Logger:        config.Logger,
	}, client.Login)
	if err != nil {
		return nil, err
	}

	client.apiKey = resolution.APIKey
	client.strategy = resolution.Strategy

	if client.logger != nil {
		client.logger.Debug("resolved API key", map[string]interface{}{
			"strategy": string(resolution.Strategy),
			"base_url": client.baseURL,
		})
	}

	return client, nil
}

// APIKey implements doli.Client.APIKey.
func (c *Client) APIKey() string {
	return c.apiKey
}

// Strategy implements doli.Client.Strategy.
func (c *Client) Strategy() doli.Strategy {
	return c.strategy
}

// BaseURL returns the ERP root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call implements doli.Caller.Call. The API key header is attached to every
// endpoint except login.
func (c *Client) Call(ctx context.Context, req *doli.Request) (*doli.Response, error) {
	if req == nil {
		req = &doli.Request{}
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	endpoint := strings.TrimPrefix(req.Endpoint, "/")

	query, err := encodeParams(req.Params)
	if err != nil {
		return nil, fmt.Errorf("encoding parameters for %s: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:          method,
		Path:            apiPath(endpoint),
		Query:           query,
		Body:            req.Body,
		Unauthenticated: endpoint == constants.EndpointLogin,
	})

	return toResponse(endpoint, resp, err)
}

// Login exchanges credentials for an API key. It never sends the key header.
func (c *Client) Login(ctx context.Context, creds doli.Credentials) (string, error) {
	resp, err := c.Call(ctx, &doli.Request{
		Method:   http.MethodPost,
		Endpoint: constants.EndpointLogin,
		Body:     creds,
	})
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	var login doli.LoginResponse

	err = resp.Decode(&login)
	if err != nil {
		return "", fmt.Errorf("%w: %w", doli.ErrLoginTokenMissing, err)
	}

	token, err := login.Token()
	if err != nil {
		return "", err
	}

	if c.logger != nil {
		c.logger.Info("logged in", map[string]interface{}{"login": creds.Login})
	}

	return token, nil
}

// Invoices implements doli.ResourceClient.Invoices.
func (c *Client) Invoices(ctx context.Context, params doli.Params) (*doli.Response, error) {
	return c.list(ctx, constants.EndpointInvoices, params)
}

// ThirdParties implements doli.ResourceClient.ThirdParties.
func (c *Client) ThirdParties(ctx context.Context, params doli.Params) (*doli.Response, error) {
	return c.list(ctx, constants.EndpointThirdParties, params)
}

func (c *Client) list(ctx context.Context, endpoint string, params doli.Params) (*doli.Response, error) {
	query, err := encodeParams(params)
	if err != nil {
		return nil, fmt.Errorf("encoding parameters for %s: %w", endpoint, err)
	}

	resp, err := c.httpClient.Get(ctx, apiPath(endpoint), query)

	return toResponse(endpoint, resp, err)
}

func apiPath(endpoint string) string {
	return constants.APIPrefix + "/" + endpoint
}

// toResponse checks that a successful body is JSON.
func toResponse(endpoint string, resp *internalhttp.Response, err error) (*doli.Response, error) {
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", endpoint, err)
	}

	if len(resp.Body) > 0 && !json.Valid(resp.Body) {
		return nil, fmt.Errorf("calling %s: %w", endpoint, doli.ErrInvalidPayload)
	}

	return &doli.Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// encodeParams stringifies scalar values and expands slices into repeated keys.
// Nil values are dropped.
func encodeParams(params doli.Params) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}

	query := url.Values{}

	for key, value := range params {
		switch v := value.(type) {
		case nil:
			continue
		case []string, []interface{}, []int, []int64:
			values, err := cast.ToStringSliceE(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}

			for _, item := range values {
				query.Add(key, item)
			}
		default:
			str, err := cast.ToStringE(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}

			query.Set(key, str)
		}
	}

	return query, nil
}

var _ doli.Client = (*Client)(nil)

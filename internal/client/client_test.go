package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/dolibarr-client/internal/auth"
	. "github.com/fivetwenty-io/dolibarr-client/internal/client"
	"github.com/fivetwenty-io/dolibarr-client/internal/erptest"
	internalhttp "github.com/fivetwenty-io/dolibarr-client/internal/http"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

func validCredentials() doli.CredentialProvider {
	return auth.StaticCredentials{Login: erptest.DefaultLogin, Password: erptest.DefaultPassword}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil, Options{})
		require.ErrorIs(t, err, doli.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &doli.Config{APIKey: "K"}, Options{})
		require.ErrorIs(t, err, doli.ErrConfiguration)
	})

	t.Run("explicit key is used without contacting the server", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{APIKey: "K"})
		require.NoError(t, err)
		assert.Equal(t, "K", client.APIKey())
		assert.Equal(t, doli.StrategyExplicit, client.Strategy())
		assert.Empty(t, server.Requests())
	})

	t.Run("explicit key wins over configured key", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &doli.Config{BaseURL: "http://erp.invalid", APIKey: "C"}, Options{APIKey: "K"})
		require.NoError(t, err)
		assert.Equal(t, "K", client.APIKey())
	})

	t.Run("configured key is treated as cached", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &doli.Config{BaseURL: "http://erp.invalid", APIKey: "C"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, "C", client.APIKey())
		assert.Equal(t, doli.StrategyCached, client.Strategy())
	})

	t.Run("no key and prompting disabled", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)

		_, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{Provider: validCredentials()})
		require.ErrorIs(t, err, doli.ErrAuthentication)
		assert.Empty(t, server.Requests())
	})

	t.Run("login obtains and persists the key", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		envFile := filepath.Join(t.TempDir(), ".env")

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Persist:     true,
			Provider:    validCredentials(),
			Store:       auth.NewDotenvStore(envFile),
		})
		require.NoError(t, err)
		assert.Equal(t, erptest.DefaultToken, client.APIKey())
		assert.Equal(t, doli.StrategyLogin, client.Strategy())

		env, err := godotenv.Read(envFile)
		require.NoError(t, err)
		assert.Equal(t, erptest.DefaultToken, env["API_KEY"])

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPost, requests[0].Method)
		assert.Equal(t, "/api/index.php/login", requests[0].Path)
		assert.Empty(t, requests[0].Header.Get("DOLAPIKEY"))
		assert.JSONEq(t, `{"login":"admin","password":"secret"}`, string(requests[0].Body))
	})

	t.Run("login without persistence writes nothing", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		envFile := filepath.Join(t.TempDir(), ".env")

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Provider:    validCredentials(),
			Store:       auth.NewDotenvStore(envFile),
		})
		require.NoError(t, err)
		assert.Equal(t, erptest.DefaultToken, client.APIKey())
		assert.NoFileExists(t, envFile)
	})

	t.Run("stored key is reused", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, godotenv.Write(map[string]string{"API_KEY": "S"}, envFile))

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Provider:    validCredentials(),
			Store:       auth.NewDotenvStore(envFile),
		})
		require.NoError(t, err)
		assert.Equal(t, "S", client.APIKey())
		assert.Equal(t, doli.StrategyCached, client.Strategy())
		assert.Empty(t, server.Requests())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)

		_, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Provider:    auth.StaticCredentials{Login: "admin", Password: "wrong"},
		})
		require.ErrorIs(t, err, doli.ErrTransport)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})

	t.Run("login response without token", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		server.OmitToken(true)
		envFile := filepath.Join(t.TempDir(), ".env")

		_, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Persist:     true,
			Provider:    validCredentials(),
			Store:       auth.NewDotenvStore(envFile),
		})
		require.ErrorIs(t, err, doli.ErrLoginTokenMissing)
		assert.NoFileExists(t, envFile)
	})

	t.Run("login reply with numeric entity", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"success":{"code":200,"token":"T","entity":1,"message":"Welcome admin"}}`))
		}))
		defer server.Close()

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
			AllowPrompt: true,
			Provider:    validCredentials(),
		})
		require.NoError(t, err)
		assert.Equal(t, "T", client.APIKey())
		assert.Equal(t, doli.StrategyLogin, client.Strategy())
	})

	t.Run("timeout leaves the caller's http client untouched", func(t *testing.T) {
		t.Parallel()

		shared := &http.Client{}

		_, err := New(context.Background(), &doli.Config{
			BaseURL:    "https://erp.example.com",
			HTTPClient: shared,
			Timeout:    3 * time.Second,
		}, Options{APIKey: "K"})
		require.NoError(t, err)
		assert.Zero(t, shared.Timeout)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Call(t *testing.T) {
	t.Parallel()

	t.Run("attaches key and prefix", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		client := newTestClient(t, server)

		resp, err := client.Call(context.Background(), &doli.Request{Endpoint: "invoices"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		last, ok := server.LastRequest()
		require.True(t, ok)
		assert.Equal(t, http.MethodGet, last.Method)
		assert.Equal(t, "/api/index.php/invoices", last.Path)
		assert.Equal(t, erptest.DefaultToken, last.Header.Get("DOLAPIKEY"))
		assert.Empty(t, last.Body)
	})

	t.Run("encodes parameters", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		client := newTestClient(t, server)

		_, err := client.Call(context.Background(), &doli.Request{
			Method:   "get",
			Endpoint: "/thirdparties",
			Params: doli.Params{
				"limit":     2,
				"sortorder": "ASC",
				"mode":      true,
				"ids":       []int{10, 11},
				"skipped":   nil,
			},
		})
		require.NoError(t, err)

		last, ok := server.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "/api/index.php/thirdparties", last.Path)
		assert.Equal(t, "2", last.Query.Get("limit"))
		assert.Equal(t, "ASC", last.Query.Get("sortorder"))
		assert.Equal(t, "true", last.Query.Get("mode"))
		assert.Equal(t, []string{"10", "11"}, last.Query["ids"])
		assert.NotContains(t, last.Query, "skipped")
	})

	t.Run("unknown endpoint is a transport error", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		client := newTestClient(t, server)

		_, err := client.Call(context.Background(), &doli.Request{Endpoint: "nonexistent"})
		require.ErrorIs(t, err, doli.ErrTransport)
		assert.True(t, doli.IsNotFound(err))
	})

	t.Run("rejected key is unauthorized", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{APIKey: "stale"})
		require.NoError(t, err)

		_, err = client.Invoices(context.Background(), nil)
		require.ErrorIs(t, err, doli.ErrTransport)
		assert.True(t, doli.IsUnauthorized(err))
	})

	t.Run("server error is not retried", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		server.SetFailStatus(http.StatusInternalServerError)
		client := newTestClient(t, server)

		_, err := client.Invoices(context.Background(), nil)
		require.ErrorIs(t, err, doli.ErrTransport)
		assert.Len(t, server.Requests(), 1)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &doli.Config{BaseURL: "http://127.0.0.1:1"}, Options{APIKey: "K"})
		require.NoError(t, err)

		_, err = client.Invoices(context.Background(), nil)
		require.ErrorIs(t, err, doli.ErrTransport)
	})

	t.Run("login endpoint never carries the key", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		client := newTestClient(t, server)

		_, err := client.Call(context.Background(), &doli.Request{
			Method:   http.MethodPost,
			Endpoint: "login",
			Body:     doli.Credentials{Login: erptest.DefaultLogin, Password: erptest.DefaultPassword},
		})
		require.NoError(t, err)

		last, ok := server.LastRequest()
		require.True(t, ok)
		assert.Empty(t, last.Header.Get("DOLAPIKEY"))
	})

	t.Run("login endpoint never carries a cached key", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)

		client, err := New(context.Background(), &doli.Config{BaseURL: server.URL, APIKey: erptest.DefaultToken}, Options{})
		require.NoError(t, err)
		require.Equal(t, doli.StrategyCached, client.Strategy())

		_, err = client.Call(context.Background(), &doli.Request{
			Method:   http.MethodPost,
			Endpoint: "login",
			Body:     doli.Credentials{Login: erptest.DefaultLogin, Password: erptest.DefaultPassword},
		})
		require.NoError(t, err)

		last, ok := server.LastRequest()
		require.True(t, ok)
		assert.Equal(t, "/api/index.php/login", last.Path)
		assert.Empty(t, last.Header.Get("DOLAPIKEY"))

		_, err = client.Invoices(context.Background(), nil)
		require.NoError(t, err)

		last, ok = server.LastRequest()
		require.True(t, ok)
		assert.Equal(t, erptest.DefaultToken, last.Header.Get("DOLAPIKEY"))
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		t.Parallel()

		server := erptest.NewServer(t)
		client := newTestClient(t, server)

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()

		time.Sleep(time.Millisecond)

		_, err := client.Invoices(ctx, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_Invoices(t *testing.T) {
	t.Parallel()

	server := erptest.NewServer(t)
	client := newTestClient(t, server)

	resp, err := client.Invoices(context.Background(), doli.Params{"limit": 5})
	require.NoError(t, err)

	records, err := resp.Records()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "FA2401-0001", records[0]["ref"])

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodGet, requests[0].Method)
	assert.Equal(t, "/api/index.php/invoices", requests[0].Path)
	assert.Equal(t, "5", requests[0].Query.Get("limit"))
	assert.Equal(t, erptest.DefaultToken, requests[0].Header.Get("DOLAPIKEY"))
}

func TestClient_ThirdParties(t *testing.T) {
	t.Parallel()

	server := erptest.NewServer(t)
	client := newTestClient(t, server)

	resp, err := client.ThirdParties(context.Background(), doli.Params{"limit": 1})
	require.NoError(t, err)

	records, err := resp.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Corp", records[0]["name"])

	last, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/api/index.php/thirdparties", last.Path)
	assert.Equal(t, "1", last.Query.Get("limit"))
}

func TestClient_Metrics(t *testing.T) {
	t.Parallel()

	server := erptest.NewServer(t)
	metrics := internalhttp.NewMetrics(prometheus.NewRegistry())

	client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{
		AllowPrompt: true,
		Provider:    validCredentials(),
		Metrics:     metrics,
	})
	require.NoError(t, err)

	_, err = client.Invoices(context.Background(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("POST", "login", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "invoices", "200")), 0)

	_, err = client.Call(context.Background(), &doli.Request{Endpoint: "invoices/123"})
	require.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "invoices", "404")), 0)
}

func newTestClient(t *testing.T, server *erptest.Server) *Client {
	t.Helper()

	client, err := New(context.Background(), &doli.Config{BaseURL: server.URL}, Options{APIKey: erptest.DefaultToken})
	require.NoError(t, err)

	return client
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var transportErr *doli.TransportError

	require.ErrorAs(t, err, &transportErr)

	return transportErr.StatusCode
}

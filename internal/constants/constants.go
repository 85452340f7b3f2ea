package constants

import "time"

// File permissions.
const (
	// ConfigFilePerm is the permission for settings files written by the client.
	ConfigFilePerm = 0600
)

// Dolibarr REST API layout.
const (
	// APIPrefix is the path every REST endpoint lives under.
	APIPrefix = "/api/index.php"

	// APIKeyHeader carries the session credential on authenticated requests.
	APIKeyHeader = "DOLAPIKEY"

	// EndpointLogin is called unauthenticated to exchange credentials for a key.
	EndpointLogin = "login"

	// EndpointInvoices lists invoices.
	EndpointInvoices = "invoices"

	// EndpointThirdParties lists third parties (customers, suppliers, prospects).
	EndpointThirdParties = "thirdparties"
)

// Environment and settings file keys.
const (
	// EnvBaseURL holds the ERP base URL.
	EnvBaseURL = "BASE_URL"

	// EnvAPIKey holds a cached or pre-shared API key.
	EnvAPIKey = "API_KEY"

	// EnvPrefix prefixes the ambient client settings.
	EnvPrefix = "DOLI"

	// DefaultEnvFile is the settings file name searched for from the working directory.
	DefaultEnvFile = ".env"
)

// HTTP defaults.
const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "doli-go"

	// RequestIDHeader carries a per-request identifier.
	RequestIDHeader = "X-Request-ID"

	// DefaultRetryWaitMin is the minimum backoff once retries are enabled.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff once retries are enabled.
	DefaultRetryWaitMax = 30 * time.Second
)

// Credential stores.
const (
	// CredentialStoreDotenv persists the key in the .env settings file.
	CredentialStoreDotenv = "dotenv"

	// CredentialStoreNATS persists the key in a NATS JetStream key-value bucket.
	CredentialStoreNATS = "nats"

	// DefaultNATSBucket is the bucket used when none is configured.
	DefaultNATSBucket = "doli"
)

// Output formats.
const (
	// FormatTable renders a table.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

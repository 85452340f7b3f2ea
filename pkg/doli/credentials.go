package doli

import "context"

// Credentials are the login and password exchanged for an API key.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// CredentialProvider obtains credentials for the login endpoint.
// The CLI prompts the operator; automated callers supply fixed credentials.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// KeyStore persists an obtained API key for reuse across runs.
type KeyStore interface {
	// LoadAPIKey returns ErrKeyNotFound when nothing is stored.
	LoadAPIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, apiKey string) error
}

package auth

import (
	"fmt"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// NewKeyStoreFromConfig creates the key store named by config.CredentialStore.
// The returned close function releases connections held by the store.
func NewKeyStoreFromConfig(config *doli.Config) (doli.KeyStore, func(), error) {
	switch config.CredentialStore {
	case "", constants.CredentialStoreDotenv:
		path := config.EnvFile
		if path == "" {
			path = constants.DefaultEnvFile
		}

		return NewDotenvStore(path), func() {}, nil

	case constants.CredentialStoreNATS:
		store, err := NewNATSStore(config.NATSURL, config.NATSBucket)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %w %q", doli.ErrConfiguration, constants.ErrUnknownCredStore, config.CredentialStore)
	}
}

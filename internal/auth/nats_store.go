package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL is required for the nats credential store")
)

const natsConnectTimeout = 5 * time.Second

// NATSStore keeps the key in a NATS JetStream key-value bucket, so several
// hosts can share one login.
type NATSStore struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSStore connects to url and opens bucket, creating it when missing.
func NewNATSStore(url, bucket string) (*NATSStore, error) {
	if url == "" {
		return nil, ErrNATSURLRequired
	}

	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(url, nats.Name(constants.DefaultUserAgent), nats.Timeout(natsConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "Dolibarr API keys",
			History:     1,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening key-value bucket %q: %w", bucket, err)
	}

	return &NATSStore{conn: conn, kv: kv}, nil
}

// LoadAPIKey implements doli.KeyStore.
func (s *NATSStore) LoadAPIKey(ctx context.Context) (string, error) {
	entry, err := s.kv.Get(constants.EnvAPIKey)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", doli.ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("reading API key from NATS: %w", err)
	}

	return string(entry.Value()), nil
}

// SaveAPIKey implements doli.KeyStore.
func (s *NATSStore) SaveAPIKey(ctx context.Context, apiKey string) error {
	_, err := s.kv.PutString(constants.EnvAPIKey, apiKey)
	if err != nil {
		return fmt.Errorf("writing API key to NATS: %w", err)
	}

	return nil
}

// Close closes the NATS connection.
func (s *NATSStore) Close() {
	s.conn.Close()
}

var _ doli.KeyStore = (*NATSStore)(nil)

package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// DotenvStore keeps the key as API_KEY in a .env settings file.
// Other entries of the file are preserved.
type DotenvStore struct {
	path  string
	mutex sync.Mutex
}

// NewDotenvStore creates a store backed by the file at path.
func NewDotenvStore(path string) *DotenvStore {
	return &DotenvStore{path: path}
}

// Path returns the settings file path.
func (s *DotenvStore) Path() string {
	return s.path
}

// LoadAPIKey implements doli.KeyStore.
func (s *DotenvStore) LoadAPIKey(ctx context.Context) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	env, err := s.read()
	if err != nil {
		return "", err
	}

	apiKey := env[constants.EnvAPIKey]
	if apiKey == "" {
		return "", doli.ErrKeyNotFound
	}

	return apiKey, nil
}

// SaveAPIKey implements doli.KeyStore. Only the API_KEY line is rewritten, or
// appended when absent; every other line is kept byte for byte.
func (s *DotenvStore) SaveAPIKey(ctx context.Context, apiKey string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	content, err := s.readRaw()
	if err != nil {
		return err
	}

	entry, err := godotenv.Marshal(map[string]string{constants.EnvAPIKey: apiKey})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	err = os.WriteFile(s.path, []byte(setEntry(content, constants.EnvAPIKey, entry)), constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	return nil
}

// setEntry replaces every line that assigns key with entry, appending entry
// when no line does.
func setEntry(content, key, entry string) string {
	lines := strings.Split(content, "\n")
	found := false

	for i, line := range lines {
		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}

		if _, ok := parsed[key]; ok {
			lines[i] = entry
			found = true
		}
	}

	if found {
		return strings.Join(lines, "\n")
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	return content + entry + "\n"
}

// read returns the current entries; a missing file reads as empty.
func (s *DotenvStore) read() (map[string]string, error) {
	content, err := s.readRaw()
	if err != nil {
		return nil, err
	}

	env, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	return env, nil
}

func (s *DotenvStore) readRaw() (string, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", s.path, constants.ErrNotRegularFile)
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	return string(content), nil
}

var _ doli.KeyStore = (*DotenvStore)(nil)

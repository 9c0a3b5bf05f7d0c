package cryptox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/filex"
)

// ErrInvalidKey is returned when a key or key file does not hold a valid
// KeySize-byte key.
var ErrInvalidKey = errors.New("invalid vault key")

var keyEncoding = base64.URLEncoding

// GenerateKey returns a fresh random key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// LoadOrCreateKey reads the vault key stored at path. If the file does not
// exist, a new random key is generated and written there (mode 0600) before it
// is returned.
//
// Losing this file makes every stored ciphertext permanently unreadable.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := LoadKey(path)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key = GenerateKey()
	if err := writeKey(path, key); err != nil {
		// Another process may have created the file in between.
		if errors.Is(err, os.ErrExist) {
			return LoadKey(path)
		}
		return nil, err
	}
	return key, nil
}

// LoadKey reads and decodes the key file at path.
func LoadKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key, err := keyEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKey, path, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %s holds %d bytes", ErrInvalidKey, path, len(key))
	}
	return key, nil
}

func writeKey(path string, key []byte) error {
	if err := filex.EnsureParent(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(keyEncoding.EncodeToString(key) + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write key: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync key: %w", err)
	}
	return f.Close()
}

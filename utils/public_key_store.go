package utils

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// PublicKeyStore maps key ids to RSA public keys used for token
// verification.
type PublicKeyStore struct {
	keys map[string]*rsa.PublicKey
	mu   sync.RWMutex
}

func NewPublicKeyStore() *PublicKeyStore {
	return &PublicKeyStore{
		keys: make(map[string]*rsa.PublicKey),
	}
}

// LoadKeys reads every "<kid>_public.pem" file in dir into the store.
func (store *PublicKeyStore) LoadKeys(dir string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, "_public.pem") {
			continue
		}
		kid := strings.TrimSuffix(name, "_public.pem")

		path := filepath.Join(dir, name)
		pemData, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read public key file %s: %w", path, err)
		}

		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pemData)
		if err != nil {
			return fmt.Errorf("failed to parse public key from file %s: %w", path, err)
		}

		store.keys[kid] = pubKey
	}
	return nil
}

func (store *PublicKeyStore) GetKey(kid string) (*rsa.PublicKey, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	key, exists := store.keys[kid]
	if !exists {
		return nil, fmt.Errorf("public key not found for kid: %s", kid)
	}
	return key, nil
}

// Len reports how many keys are loaded, for startup logging.
func (store *PublicKeyStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.keys)
}

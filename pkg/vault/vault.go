// Package vault stores secrets such as API tokens in the OS keyring, with an
// encrypted file fallback for headless machines.
package vault

import (
	"sort"
	"sync"

	"github.com/99designs/keyring"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("secret not found")

// Vault reads and writes named secrets.
type Vault struct {
	ring     keyring.Keyring
	fallback string
	mu       sync.RWMutex
}

// Open opens the keyring for service. fallbackPath is used when the keyring
// cannot be opened or rejects an operation.
func Open(service, fallbackPath string) *Vault {
	v := &Vault{fallback: fallbackPath}
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
	})
	if err == nil {
		v.ring = ring
	}
	return v
}

// OpenFile returns a vault backed only by the encrypted file.
func OpenFile(path string) *Vault {
	return &Vault{fallback: path}
}

func (v *Vault) Set(key, value string) error {
	if v.ring != nil {
		err := v.ring.Set(keyring.Item{
			Key:  key,
			Data: []byte(value),
		})
		if err == nil {
			return nil
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	secrets, err := loadSecrets(v.fallback)
	if err != nil {
		secrets = make(map[string]string)
	}
	secrets[key] = value
	return saveSecrets(v.fallback, secrets)
}

func (v *Vault) Get(key string) (string, error) {
	if v.ring != nil {
		item, err := v.ring.Get(key)
		if err == nil {
			return string(item.Data), nil
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	secrets, err := loadSecrets(v.fallback)
	if err != nil {
		return "", err
	}
	if val, ok := secrets[key]; ok {
		return val, nil
	}
	return "", errors.Wrap(ErrNotFound, key)
}

// Lookup returns the secret for key or "" when it is absent or unreadable.
func (v *Vault) Lookup(key string) string {
	val, err := v.Get(key)
	if err != nil {
		return ""
	}
	return val
}

// List returns the stored keys in sorted order.
func (v *Vault) List() ([]string, error) {
	if v.ring != nil {
		keys, err := v.ring.Keys()
		if err == nil {
			sort.Strings(keys)
			return keys, nil
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	secrets, err := loadSecrets(v.fallback)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

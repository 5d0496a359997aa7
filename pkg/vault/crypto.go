package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type encryptedPayload struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// machineID returns a stable identifier for this host.
func machineID() string {
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(p); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id
			}
		}
	}
	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return hostname + ":" + home
}

func deriveKey() []byte {
	sum := sha256.Sum256([]byte(machineID() + "talon-vault-v1"))
	return sum[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(data []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return json.MarshalIndent(encryptedPayload{
		Version:    1,
		Nonce:      hex.EncodeToString(nonce),
		Ciphertext: hex.EncodeToString(gcm.Seal(nil, nonce, data, nil)),
	}, "", "  ")
}

func decrypt(data []byte) ([]byte, error) {
	var payload encryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "decode secrets file")
	}
	if payload.Version != 1 {
		return nil, errors.Errorf("unsupported secrets version %d", payload.Version)
	}
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(payload.Nonce)
	if err != nil {
		return nil, errors.Wrap(err, "decode nonce")
	}
	ciphertext, err := hex.DecodeString(payload.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "decode ciphertext")
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Mask hides most of a secret for display.
func Mask(s string) string {
	switch {
	case len(s) == 0:
		return ""
	case len(s) <= 4:
		return "****"
	case len(s) <= 10:
		return s[:1] + "********" + s[len(s)-1:]
	}
	return s[:3] + "********" + s[len(s)-3:]
}

func loadSecrets(path string) (map[string]string, error) {
	secrets := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, errors.Wrap(err, "read secrets")
	}
	plain, err := decrypt(data)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plain, &secrets); err != nil {
		return nil, errors.Wrap(err, "decode secrets")
	}
	return secrets, nil
}

func saveSecrets(path string, secrets map[string]string) error {
	data, err := json.Marshal(secrets)
	if err != nil {
		return err
	}
	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create secrets dir")
	}
	return os.WriteFile(path, encrypted, 0o600)
}

// Package keyring stores remote connection secrets outside the local store.
// It prefers the OS keyring and falls back to an encrypted file on headless
// hosts where no keyring daemon answers.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name all workbench secrets live under.
const Service = "duck-ui"

// Secret slot suffixes per connection.
const (
	slotPassword = "password"
	slotAPIKey   = "apikey"
)

// probeTimeout bounds the system keyring availability check. A missing
// keyring daemon can otherwise hang the probe indefinitely.
const probeTimeout = 5 * time.Second

// Manager stores and retrieves per-connection secrets, dispatching to
// the system keyring or the encrypted file fallback.
type Manager struct {
	file *fileStore
}

// NewManager probes the system keyring and falls back to an encrypted
// file at path when the system keyring does not answer.
func NewManager(path, masterPassword string) *Manager {
	if systemKeyringAvailable() {
		return &Manager{}
	}
	return &Manager{file: newFileStore(path, masterPassword)}
}

func systemKeyringAvailable() bool {
	done := make(chan error, 1)
	go func() {
		err := keyring.Set("duckui-probe", "probe", "ok")
		if err == nil {
			keyring.Delete("duckui-probe", "probe")
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err == nil
	case <-time.After(probeTimeout):
		return false
	}
}

// SetConnectionSecrets stores the password and API key for a connection.
// Empty values clear the corresponding slot.
func (m *Manager) SetConnectionSecrets(connectionID, password, apiKey string) error {
	if err := m.setOrClear(connectionID, slotPassword, password); err != nil {
		return err
	}
	return m.setOrClear(connectionID, slotAPIKey, apiKey)
}

// GetConnectionSecrets returns the stored password and API key for a
// connection. Missing slots come back empty without error.
func (m *Manager) GetConnectionSecrets(connectionID string) (password, apiKey string) {
	password, _ = m.get(slotKey(connectionID, slotPassword))
	apiKey, _ = m.get(slotKey(connectionID, slotAPIKey))
	return password, apiKey
}

// DeleteConnectionSecrets removes all secret slots for a connection.
// Best-effort: a missing entry is not an error.
func (m *Manager) DeleteConnectionSecrets(connectionID string) {
	m.del(slotKey(connectionID, slotPassword))
	m.del(slotKey(connectionID, slotAPIKey))
}

func (m *Manager) setOrClear(connectionID, slot, value string) error {
	key := slotKey(connectionID, slot)
	if value == "" {
		m.del(key)
		return nil
	}
	return m.set(key, value)
}

func (m *Manager) set(key, value string) error {
	if m.file == nil {
		return keyring.Set(Service, key, value)
	}
	return m.file.set(key, value)
}

func (m *Manager) get(key string) (string, error) {
	if m.file == nil {
		return keyring.Get(Service, key)
	}
	return m.file.get(key)
}

func (m *Manager) del(key string) {
	if m.file == nil {
		keyring.Delete(Service, key)
		return
	}
	m.file.del(key)
}

func slotKey(connectionID, slot string) string {
	return connectionID + ":" + slot
}

// fileStore keeps secrets in a single JSON file of AES-GCM sealed
// values, keyed by slot. The key derives from the master password.
type fileStore struct {
	path string
	key  []byte
}

func newFileStore(path, masterPassword string) *fileStore {
	os.MkdirAll(filepath.Dir(path), 0700)
	hash := sha256.Sum256([]byte(masterPassword))
	return &fileStore{path: path, key: hash[:]}
}

func (fs *fileStore) set(key, value string) error {
	entries := fs.load()

	sealed, err := fs.seal(value)
	if err != nil {
		return err
	}
	entries[key] = sealed

	return fs.save(entries)
}

func (fs *fileStore) get(key string) (string, error) {
	sealed, ok := fs.load()[key]
	if !ok {
		return "", fmt.Errorf("secret %s not found", key)
	}
	return fs.open(sealed)
}

func (fs *fileStore) del(key string) {
	entries := fs.load()
	if _, ok := entries[key]; !ok {
		return
	}
	delete(entries, key)
	fs.save(entries)
}

func (fs *fileStore) load() map[string]string {
	entries := make(map[string]string)
	if data, err := os.ReadFile(fs.path); err == nil {
		json.Unmarshal(data, &entries)
	}
	return entries
}

func (fs *fileStore) save(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0600)
}

func (fs *fileStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(fs.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (fs *fileStore) seal(plaintext string) (string, error) {
	gcm, err := fs.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (fs *fileStore) open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}

	gcm, err := fs.gcm()
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("sealed value too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// MasterPasswordFromEnv reads the file keyring master password from the
// environment, with a development fallback.
func MasterPasswordFromEnv() string {
	if password := os.Getenv("DUCKUI_KEYRING_PASSWORD"); password != "" {
		return password
	}
	// Default password for development (change this in production!)
	return "default-master-password-change-me"
}

// DefaultPath returns the keyring file path under dataDir, unless
// overridden by DUCKUI_KEYRING_PATH.
func DefaultPath(dataDir string) string {
	if path := os.Getenv("DUCKUI_KEYRING_PATH"); path != "" {
		return path
	}
	return filepath.Join(dataDir, "keyring.json")
}

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	sealedIDFile  = "device_id.sealed"
	sealKeyFile   = "storage.key"
	sealKeyLength = 32
)

// sealedStore persists the device id encrypted at rest, the desktop analog of
// the mobile app's secure keystore slot. The sealing key is a random 32-byte
// key generated once per installation and kept next to the sealed value with
// 0600 permissions; the AEAD key is derived from it with HKDF-SHA256 so the
// raw key file material is never used directly.
type sealedStore struct {
	mu  sync.Mutex
	dir string
}

// NewSealedStore returns a store writing <dir>/device_id.sealed, encrypted
// with a key from <dir>/storage.key (created on first save).
func NewSealedStore(dir string) Store {
	return &sealedStore{dir: dir}
}

func (s *sealedStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, sealedIDFile))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &StorageError{Op: "load", Err: err}
	}

	key, err := s.loadKey()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Sealed value exists but its key is gone; unrecoverable slot.
			return "", &StorageError{Op: "load", Err: errors.New("sealing key missing")}
		}
		return "", &StorageError{Op: "load", Err: err}
	}

	id, err := open(key, sealed)
	if err != nil {
		return "", &StorageError{Op: "load", Err: err}
	}
	return id, nil
}

func (s *sealedStore) Save(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	key, err := s.loadKey()
	if errors.Is(err, os.ErrNotExist) {
		key, err = s.generateKey()
	}
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	sealed, err := seal(key, id)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := os.WriteFile(filepath.Join(s.dir, sealedIDFile), sealed, 0600); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *sealedStore) loadKey() ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, sealKeyFile))
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, err
	}
	if len(key) != sealKeyLength {
		return nil, errors.New("sealing key has wrong length")
	}
	return key, nil
}

func (s *sealedStore) generateKey() ([]byte, error) {
	key := make([]byte, sealKeyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, sealKeyFile)
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0600); err != nil {
		return nil, err
	}
	return key, nil
}

// deriveSealKey derives the AEAD key from the installation key using
// HKDF-SHA256 with a fixed info string.
func deriveSealKey(installKey []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, installKey, nil, []byte("device-id-seal"))
	out := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

func seal(installKey []byte, id string) ([]byte, error) {
	key, err := deriveSealKey(installKey)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, []byte(id), nil), nil
}

func open(installKey []byte, sealed []byte) (string, error) {
	key, err := deriveSealKey(installKey)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("sealed device id too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

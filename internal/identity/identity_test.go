package identity

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every operation until healed.
type failingStore struct {
	inner  Store
	broken bool
}

func (s *failingStore) Load() (string, error) {
	if s.broken {
		return "", errors.New("disk on fire")
	}
	return s.inner.Load()
}

func (s *failingStore) Save(id string) error {
	if s.broken {
		return errors.New("disk on fire")
	}
	return s.inner.Save(id)
}

func fixedFingerprint(id string) func() (string, error) {
	return func() (string, error) { return id, nil }
}

func noFingerprint() (string, error) {
	return "", errors.New("unavailable")
}

func TestProvider_GetIsIdempotent(t *testing.T) {
	p := NewProvider(NewMemoryStore(), WithFingerprint(noFingerprint))

	first, err := p.Get(context.Background())
	require.NoError(t, err)
	second, err := p.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProvider_ReturnsPersistedID(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("hw-1234"))

	p := NewProvider(store, WithFingerprint(fixedFingerprint("should-not-be-used")))
	id, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hw-1234", id)
}

func TestProvider_PrefersFingerprintAndPersistsBeforeReturn(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store, WithFingerprint(fixedFingerprint("hw-abc")))

	id, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hw-abc", id)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "hw-abc", persisted, "id must be persisted before first use")
}

func TestProvider_SynthesizesWhenFingerprintUnavailable(t *testing.T) {
	p := NewProvider(NewMemoryStore(), WithFingerprint(noFingerprint))

	id, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^device-[a-z0-9]{9}$`), id)
}

func TestProvider_NewInstallationsDiffer(t *testing.T) {
	a, err := NewProvider(NewMemoryStore(), WithFingerprint(noFingerprint)).Get(context.Background())
	require.NoError(t, err)
	b, err := NewProvider(NewMemoryStore(), WithFingerprint(noFingerprint)).Get(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProvider_StorageFailureReturnsEphemeralIDAndError(t *testing.T) {
	store := &failingStore{inner: NewMemoryStore(), broken: true}
	p := NewProvider(store, WithFingerprint(noFingerprint))

	id, err := p.Get(context.Background())
	assert.NotEmpty(t, id, "an id must be usable even when storage fails")

	var se *StorageError
	require.ErrorAs(t, err, &se)
}

func TestProvider_RetryAfterStorageFailureKeepsSameID(t *testing.T) {
	store := &failingStore{inner: NewMemoryStore(), broken: true}
	p := NewProvider(store, WithFingerprint(noFingerprint))

	ephemeral, err := p.Get(context.Background())
	require.Error(t, err)

	store.broken = false
	healed, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ephemeral, healed, "retry must persist the same id, not mint a new one")

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ephemeral, persisted)
}

func TestProvider_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider(NewMemoryStore()).Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save("device-abc123def"))

	// A fresh store over the same directory sees the value: restart survival.
	id, err := NewFileStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "device-abc123def", id)
}

func TestSealedStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewSealedStore(dir)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save("device-xyz987abc"))

	id, err := NewSealedStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "device-xyz987abc", id)
}

func TestSealedStore_ValueIsNotPlaintextOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := NewSealedStore(dir)
	require.NoError(t, store.Save("device-secret123"))

	sealed := readFile(t, dir, sealedIDFile)
	assert.NotContains(t, string(sealed), "device-secret123")
}

func TestSealedStore_MissingKeyIsStorageError(t *testing.T) {
	dir := t.TempDir()
	store := NewSealedStore(dir)
	require.NoError(t, store.Save("device-keyless00"))

	removeFile(t, dir, sealKeyFile)

	_, err := NewSealedStore(dir).Load()
	var se *StorageError
	assert.ErrorAs(t, err, &se)
}

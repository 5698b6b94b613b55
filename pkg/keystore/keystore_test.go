package keystore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/pkg/keystore"
	"github.com/snehendu098/ghost/pkg/wallet"
)

const (
	addrA = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	addrB = "0x00000000000000000000000000000000000000000000000000000000000000bb"
)

func TestKeystore_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keystore.json")

	ks := keystore.New()
	assert.True(t, ks.IsEmpty())
	ks.Add(addrB, "secret2")
	ks.Add(addrA, "secret1")
	require.NoError(t, ks.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := keystore.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, []string{addrA, addrB}, loaded.List())

	secret, ok := loaded.Get(addrA)
	require.True(t, ok)
	assert.Equal(t, "secret1", secret)
}

func TestKeystore_FileShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keystore.json")
	ks := keystore.New()
	ks.Add(addrA, "secret1")
	require.NoError(t, ks.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"keys":{%q:"secret1"}}`, addrA), string(data))
	assert.Contains(t, string(data), "\n  ", "file should be pretty-printed")
}

func TestKeystore_AddReplaces(t *testing.T) {
	t.Parallel()

	ks := keystore.New()
	ks.Add(addrA, "old")
	ks.Add(addrA, "new")
	assert.Equal(t, 1, ks.Len())

	secret, ok := ks.Get(addrA)
	require.True(t, ok)
	assert.Equal(t, "new", secret)
}

func TestKeystore_Remove(t *testing.T) {
	t.Parallel()

	ks := keystore.New()
	ks.Add(addrA, "secret1")

	secret, ok := ks.Remove(addrA)
	assert.True(t, ok)
	assert.Equal(t, "secret1", secret)

	_, ok = ks.Remove(addrA)
	assert.False(t, ok)
	assert.True(t, ks.IsEmpty())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := keystore.Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, keystore.ErrIO)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = keystore.Load(bad)
	assert.ErrorIs(t, err, keystore.ErrDecode)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o600))
	ks, err := keystore.Load(empty)
	require.NoError(t, err)
	assert.True(t, ks.IsEmpty())
	ks.Add(addrA, "secret1")
	assert.Equal(t, 1, ks.Len())
}

func TestSave_UnwritablePath(t *testing.T) {
	t.Parallel()

	err := keystore.New().Save(filepath.Join(t.TempDir(), "no", "such", "dir", "ks.json"))
	assert.ErrorIs(t, err, keystore.ErrIO)
}

func TestKeystore_WalletRoundTrip(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)

	ks := keystore.New()
	ks.AddWallet(w)

	restored, err := ks.Wallet(w.Address())
	require.NoError(t, err)
	assert.Equal(t, w.Address(), restored.Address())
	assert.Equal(t, w.PublicKey(), restored.PublicKey())

	_, err = ks.Wallet(addrB)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestKeystore_StringMasksSecrets(t *testing.T) {
	t.Parallel()

	ks := keystore.New()
	ks.Add(addrA, "very-secret-value")

	for _, verb := range []string{"%v", "%+v", "%#v", "%s"} {
		out := fmt.Sprintf(verb, ks)
		assert.NotContains(t, out, "very-secret-value", verb)
		assert.Contains(t, out, addrA, verb)
		assert.Contains(t, out, "***", verb)
	}
	assert.Equal(t, fmt.Sprintf("Keystore{1 keys: %s: ***}", addrA), ks.String())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keystore.json")

	s, err := keystore.OpenFileStore(path)
	require.NoError(t, err)
	testStore(t, s)

	w, err := wallet.Generate()
	require.NoError(t, err)
	require.NoError(t, keystore.PutWallet(ctx, s, w))

	// Every write hits the file.
	onDisk, err := keystore.Load(path)
	require.NoError(t, err)
	restored, err := onDisk.Wallet(w.Address())
	require.NoError(t, err)
	assert.Equal(t, w.Address(), restored.Address())

	reopened, err := keystore.OpenFileStore(path)
	require.NoError(t, err)
	fromStore, err := keystore.LoadWallet(ctx, reopened, w.Address())
	require.NoError(t, err)
	assert.Equal(t, w.PublicKey(), fromStore.PublicKey())
}

func TestOpenFileStore_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keystore.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	_, err := keystore.OpenFileStore(path)
	assert.ErrorIs(t, err, keystore.ErrDecode)
}

// testStore exercises the Store contract on an empty store.
func testStore(t *testing.T, s keystore.Store) {
	t.Helper()
	ctx := context.Background()

	addrs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, addrs)

	_, err = s.Get(ctx, addrA)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, addrA), keystore.ErrNotFound)

	require.NoError(t, s.Put(ctx, addrB, "secret2"))
	require.NoError(t, s.Put(ctx, addrA, "old"))
	require.NoError(t, s.Put(ctx, addrA, "secret1"))

	secret, err := s.Get(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, "secret1", secret)

	addrs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addrA, addrB}, addrs)

	require.NoError(t, s.Delete(ctx, addrB))
	addrs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addrA}, addrs)

	require.NoError(t, s.Delete(ctx, addrA))
}

package wallet_test

import (
	"encoding/base64"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/pkg/sign"
	"github.com/snehendu098/ghost/pkg/wallet"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)

	assert.Regexp(t, `^0x[0-9a-f]{64}$`, w.Address())
	assert.Len(t, w.PublicKey(), 32)
	assert.Equal(t, sign.AddressFromPublicKey(w.PublicKey()), w.Address())

	other, err := wallet.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, w.Address(), other.Address())
}

func TestFromPrivateKey(t *testing.T) {
	t.Parallel()

	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	a, err := wallet.FromPrivateKey(seed)
	require.NoError(t, err)
	b, err := wallet.FromPrivateKey(seed)
	require.NoError(t, err)
	assert.Equal(t, a.Address(), b.Address())
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := wallet.FromPrivateKey(make([]byte, n))
		assert.ErrorIs(t, err, wallet.ErrInvalidKeyMaterial, "len %d", n)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)

	exported := w.ExportBase64PrivateKey()
	raw, err := base64.StdEncoding.DecodeString(exported)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	restored, err := wallet.FromBase64PrivateKey(exported)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), restored.Address())

	_, err = wallet.FromBase64PrivateKey("not base64!")
	assert.ErrorIs(t, err, wallet.ErrDecode)

	_, err = wallet.FromBase64PrivateKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, wallet.ErrInvalidKeyMaterial)
}

func TestSignVerify(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)

	msg := []byte("tx bytes")
	sig, err := w.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	ok, err := w.Verify(msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.Verify([]byte("other"), sig)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = w.Verify(msg, sig[:10])
	assert.ErrorIs(t, err, sign.ErrMalformedInput)

	viaSigner, err := w.Signer().Sign(msg)
	require.NoError(t, err)
	assert.Equal(t, sig, viaSigner)
	assert.Equal(t, w.Address(), w.Signer().PublicKey().Address().String())
}

func TestConcurrentSigning(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := []byte(fmt.Sprintf("msg-%d", i))
			sig, err := w.Sign(msg)
			assert.NoError(t, err)
			ok, err := w.Verify(msg, sig)
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
}

func TestRepresentationMasksSecret(t *testing.T) {
	t.Parallel()

	w, err := wallet.Generate()
	require.NoError(t, err)
	secret := w.ExportBase64PrivateKey()

	for _, verb := range []string{"%v", "%+v", "%#v", "%s", "%x", "%q"} {
		out := fmt.Sprintf(verb, w)
		assert.NotContains(t, out, secret, verb)
		assert.Contains(t, out, "***", verb)
		assert.Contains(t, out, w.Address(), verb)
	}
	assert.Len(t, w.Fingerprint(), 8)
}

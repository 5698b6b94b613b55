package rpc_test

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/pkg/rpc"
)

func TestFormatSui(t *testing.T) {
	t.Parallel()

	tcs := map[uint64]string{
		0:                    "0",
		1:                    "0.000000001",
		1_000_000_000:        "1",
		1_500_000_000:        "1.5",
		18446744073709551615: "18446744073.709551615",
	}
	for mist, want := range tcs {
		assert.Equal(t, want, rpc.FormatSui(mist), "mist %d", mist)
	}
}

func TestParseSui(t *testing.T) {
	t.Parallel()

	mist, err := rpc.ParseSui("1.5")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), mist)

	mist, err = rpc.ParseSui("0.000000001")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), mist)

	for _, bad := range []string{"", "abc", "-1", "0.0000000001", "18446744073.709551616"} {
		_, err := rpc.ParseSui(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDigest(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 32)
	raw[0] = 0x42
	encoded := base58.Encode(raw)

	d, err := rpc.ParseDigest(encoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, d.String())
	assert.Equal(t, raw, d.Bytes())

	_, err = rpc.ParseDigest(base58.Encode(raw[:31]))
	assert.ErrorIs(t, err, rpc.ErrDecode)

	_, err = rpc.ParseDigest("0OIl" + strings.Repeat("1", 40))
	assert.ErrorIs(t, err, rpc.ErrDecode)
}

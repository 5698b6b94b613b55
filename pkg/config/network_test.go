package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/pkg/config"
)

func TestDefaultNetworks(t *testing.T) {
	t.Parallel()

	networks := config.DefaultNetworks()
	require.NoError(t, networks.Validate())
	assert.Equal(t, []string{"devnet", "localnet", "mainnet", "testnet"}, networks.Names())

	local, err := networks.Get("localnet")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", local.RPCURL)
	assert.Equal(t, "ws://127.0.0.1:9000", local.WSURL)
	assert.Equal(t, "http://127.0.0.1:9123/gas", local.FaucetURL)

	main, err := networks.Get("mainnet")
	require.NoError(t, err)
	assert.Empty(t, main.FaucetURL)

	_, err = networks.Get("moonnet")
	assert.ErrorIs(t, err, config.ErrUnknownNetwork)

	networks["devnet"] = config.Network{Name: "devnet", RPCURL: "x"}
	assert.NotEqual(t, networks["devnet"], config.DefaultNetworks()["devnet"], "each call returns a fresh registry")
}

func TestNetworks_Validate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		network config.Network
		key     string
	}{
		{name: "missing rpc", network: config.Network{Name: "a", WSURL: "ws://h"}, key: "a"},
		{name: "bad ws", network: config.Network{Name: "a", RPCURL: "http://h", WSURL: "h"}, key: "a"},
		{name: "bad faucet", network: config.Network{Name: "a", RPCURL: "http://h", WSURL: "ws://h", FaucetURL: "nope"}, key: "a"},
		{name: "bad name", network: config.Network{Name: "Staging", RPCURL: "http://h", WSURL: "ws://h"}, key: "Staging"},
		{name: "key mismatch", network: config.Network{Name: "a", RPCURL: "http://h", WSURL: "ws://h"}, key: "b"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := config.Networks{tc.key: tc.network}.Validate()
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoadNetworks(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		networks, err := config.LoadNetworks(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, config.DefaultNetworks(), networks)
	})

	t.Run("adds and overrides", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "networks.yaml", `
networks:
  - name: staging_2
    rpc_url: https://rpc.staging.example.com
    ws_url: wss://rpc.staging.example.com
  - name: localnet
    rpc_url: http://127.0.0.1:9100
    ws_url: ws://127.0.0.1:9100
`)

		networks, err := config.LoadNetworks(dir)
		require.NoError(t, err)
		assert.Len(t, networks, 5)

		staging, err := networks.Get("staging_2")
		require.NoError(t, err)
		assert.Equal(t, "wss://rpc.staging.example.com", staging.WSURL)

		local, err := networks.Get("localnet")
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9100", local.RPCURL)
		assert.Empty(t, local.FaucetURL)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "networks.yaml", "")

		networks, err := config.LoadNetworks(dir)
		require.NoError(t, err)
		assert.Len(t, networks, 4)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		for name, content := range map[string]string{
			"bad yaml":  "networks: [",
			"bad name":  "networks:\n  - name: 9lives\n    rpc_url: http://h\n    ws_url: ws://h\n",
			"bad url":   "networks:\n  - name: broken\n    rpc_url: nope\n    ws_url: ws://h\n",
			"no ws url": "networks:\n  - name: broken\n    rpc_url: http://h\n",
		} {
			dir := t.TempDir()
			writeFile(t, dir, "networks.yaml", content)

			_, err := config.LoadNetworks(dir)
			assert.ErrorIs(t, err, config.ErrInvalidConfig, name)
		}
	})
}

// Package config holds the named network presets and the environment-driven application
// configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const networksFileName = "networks.yaml"

var (
	// ErrUnknownNetwork is returned when a network name has no preset.
	ErrUnknownNetwork = fmt.Errorf("unknown network")
	// ErrInvalidConfig is returned when configuration cannot be read or does not validate.
	ErrInvalidConfig = fmt.Errorf("invalid config")
)

var (
	networkNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	validate         = validator.New()
)

// Network is a set of endpoints for one ledger deployment.
type Network struct {
	Name      string `yaml:"name" validate:"required"`
	RPCURL    string `yaml:"rpc_url" validate:"required,url"`
	WSURL     string `yaml:"ws_url" validate:"required,url"`
	FaucetURL string `yaml:"faucet_url" validate:"omitempty,url"`
}

var (
	Mainnet = Network{
		Name:   "mainnet",
		RPCURL: "https://fullnode.mainnet.sui.io:443",
		WSURL:  "wss://fullnode.mainnet.sui.io:443",
	}
	Testnet = Network{
		Name:      "testnet",
		RPCURL:    "https://fullnode.testnet.sui.io:443",
		WSURL:     "wss://fullnode.testnet.sui.io:443",
		FaucetURL: "https://faucet.testnet.sui.io/gas",
	}
	Devnet = Network{
		Name:      "devnet",
		RPCURL:    "https://fullnode.devnet.sui.io:443",
		WSURL:     "wss://fullnode.devnet.sui.io:443",
		FaucetURL: "https://faucet.devnet.sui.io/gas",
	}
	Localnet = Network{
		Name:      "localnet",
		RPCURL:    "http://127.0.0.1:9000",
		WSURL:     "ws://127.0.0.1:9000",
		FaucetURL: "http://127.0.0.1:9123/gas",
	}
)

// Networks indexes networks by name.
type Networks map[string]Network

// DefaultNetworks returns a fresh registry of the built-in presets.
func DefaultNetworks() Networks {
	return Networks{
		Mainnet.Name:  Mainnet,
		Testnet.Name:  Testnet,
		Devnet.Name:   Devnet,
		Localnet.Name: Localnet,
	}
}

func (n Networks) Get(name string) (Network, error) {
	nw, ok := n[name]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
	return nw, nil
}

// Names returns the registered names in sorted order.
func (n Networks) Names() []string {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks every network's name and endpoints.
func (n Networks) Validate() error {
	for _, name := range n.Names() {
		nw := n[name]
		if nw.Name != name {
			return fmt.Errorf("%w: network registered as %q is named %q", ErrInvalidConfig, name, nw.Name)
		}
		if !networkNameRegex.MatchString(name) {
			return fmt.Errorf("%w: invalid network name %q, should match %s", ErrInvalidConfig, name, networkNameRegex)
		}
		if err := validate.Struct(nw); err != nil {
			return fmt.Errorf("%w: network %q: %w", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

type networksFile struct {
	Networks []Network `yaml:"networks"`
}

// LoadNetworks returns the presets merged with <dir>/networks.yaml, when that file exists.
// Entries in the file add networks or replace presets of the same name.
//
//	networks:
//	  - name: staging
//	    rpc_url: https://rpc.staging.example.com
//	    ws_url: wss://rpc.staging.example.com
func LoadNetworks(dir string) (Networks, error) {
	networks := DefaultNetworks()

	f, err := os.Open(filepath.Join(dir, networksFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return networks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defer f.Close()

	var file networksFile
	if err := yaml.NewDecoder(f).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, networksFileName, err)
	}

	for _, nw := range file.Networks {
		if !networkNameRegex.MatchString(nw.Name) {
			return nil, fmt.Errorf("%w: invalid network name %q, should match %s", ErrInvalidConfig, nw.Name, networkNameRegex)
		}
		networks[nw.Name] = nw
	}

	if err := networks.Validate(); err != nil {
		return nil, err
	}
	return networks, nil
}

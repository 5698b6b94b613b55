// Package keystore persists identities as an address to secret mapping.
//
// The file format is a pretty-printed JSON object, loaded and saved as a whole:
//
//	{
//	  "keys": {
//	    "0x5a1c...": "nWGxne/9WmC6hEr0kuwsxERJxWl7MmkZcDusAxyuf2A="
//	  }
//	}
//
// A Keystore is not safe for concurrent use and Save does no locking, so writers to the same
// file must be serialized by the caller.
package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/snehendu098/ghost/pkg/wallet"
)

var (
	ErrIO       = fmt.Errorf("keystore i/o error")
	ErrDecode   = fmt.Errorf("keystore decode error")
	ErrNotFound = fmt.Errorf("key not found")
)

const maskedSecret = "***"

// Keystore maps addresses to base64 secrets. Addresses are unique.
type Keystore struct {
	keys map[string]string
}

type fileFormat struct {
	Keys map[string]string `json:"keys"`
}

// New returns an empty keystore.
func New() *Keystore {
	return &Keystore{keys: make(map[string]string)}
}

// Load reads a keystore file.
func Load(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if f.Keys == nil {
		f.Keys = make(map[string]string)
	}
	return &Keystore{keys: f.Keys}, nil
}

// Save writes the whole keystore to path with owner-only permissions.
func (ks *Keystore) Save(path string) error {
	data, err := json.MarshalIndent(fileFormat{Keys: ks.keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Add inserts or replaces the secret for address.
func (ks *Keystore) Add(address, secret string) {
	ks.keys[address] = secret
}

func (ks *Keystore) Get(address string) (string, bool) {
	secret, ok := ks.keys[address]
	return secret, ok
}

// Remove deletes address and returns the secret it held.
func (ks *Keystore) Remove(address string) (string, bool) {
	secret, ok := ks.keys[address]
	if ok {
		delete(ks.keys, address)
	}
	return secret, ok
}

// List returns all addresses in lexical order.
func (ks *Keystore) List() []string {
	addrs := make([]string, 0, len(ks.keys))
	for addr := range ks.keys {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

func (ks *Keystore) Len() int { return len(ks.keys) }

func (ks *Keystore) IsEmpty() bool { return len(ks.keys) == 0 }

// AddWallet stores the wallet's exported seed under its address.
func (ks *Keystore) AddWallet(w *wallet.Wallet) {
	ks.Add(w.Address(), w.ExportBase64PrivateKey())
}

// Wallet rebuilds the identity stored under address.
func (ks *Keystore) Wallet(address string) (*wallet.Wallet, error) {
	secret, ok := ks.Get(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return wallet.FromBase64PrivateKey(secret)
}

// String lists addresses only.
func (ks *Keystore) String() string {
	addrs := ks.List()
	parts := make([]string, len(addrs))
	for i, addr := range addrs {
		parts[i] = addr + ": " + maskedSecret
	}
	return fmt.Sprintf("Keystore{%d keys: %s}", len(addrs), strings.Join(parts, ", "))
}

func (ks *Keystore) GoString() string { return ks.String() }

// Format routes every verb through String.
func (ks *Keystore) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(ks.String()))
}

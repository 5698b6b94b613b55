// Package wallet holds a single signing identity: an Ed25519 key pair and its derived address.
package wallet

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/snehendu098/ghost/pkg/sign"
)

var (
	// ErrInvalidKeyMaterial is returned for private keys that are not exactly 32 bytes.
	ErrInvalidKeyMaterial = sign.ErrInvalidKeyMaterial
	// ErrDecode is returned when an encoded private key cannot be decoded.
	ErrDecode = fmt.Errorf("failed to decode key material")
)

// Wallet is a local identity. The private key never leaves it except through
// ExportBase64PrivateKey.
type Wallet struct {
	address string
	signer  *sign.Ed25519Signer
	mu      sync.Mutex // serializes use of the private key
}

// Generate creates an identity from the operating system's secure random source.
func Generate() (*Wallet, error) {
	seed := make([]byte, sign.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to read random seed: %w", err)
	}
	return FromPrivateKey(seed)
}

// FromPrivateKey builds an identity from a 32-byte seed.
func FromPrivateKey(privateKey []byte) (*Wallet, error) {
	signer, err := sign.NewEd25519Signer(privateKey)
	if err != nil {
		return nil, err
	}
	return &Wallet{
		address: signer.PublicKey().Address().String(),
		signer:  signer,
	}, nil
}

// FromBase64PrivateKey decodes a standard base64 seed and builds an identity from it.
func FromBase64PrivateKey(encoded string) (*Wallet, error) {
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return FromPrivateKey(seed)
}

// Address returns "0x" followed by 64 lower-case hex characters.
func (w *Wallet) Address() string { return w.address }

// PublicKey returns a copy of the 32-byte public key.
func (w *Wallet) PublicKey() []byte { return w.signer.PublicKey().Bytes() }

// Signer exposes the identity as a sign.Signer. Calls go through the wallet lock.
func (w *Wallet) Signer() sign.Signer { return lockedSigner{w} }

// Sign signs message with the private key.
func (w *Wallet) Sign(message []byte) (sign.Signature, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.signer.Sign(message)
}

// Verify checks signature against this wallet's public key.
func (w *Wallet) Verify(message []byte, signature sign.Signature) (bool, error) {
	return sign.Verify(message, signature, w.PublicKey())
}

// ExportBase64PrivateKey returns the seed in standard base64.
func (w *Wallet) ExportBase64PrivateKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return base64.StdEncoding.EncodeToString(w.signer.Seed())
}

// Fingerprint is a short hash of the public key, safe to print.
func (w *Wallet) Fingerprint() string {
	sum := sha256.Sum256(w.PublicKey())
	return hex.EncodeToString(sum[:4])
}

func (w *Wallet) String() string {
	return fmt.Sprintf("Wallet{address: %s, public: %s, private: ***}", w.address, w.Fingerprint())
}

func (w *Wallet) GoString() string { return w.String() }

// Format keeps every verb, including %x and %+v, on the masked form.
func (w *Wallet) Format(f fmt.State, verb rune) {
	_, _ = f.Write([]byte(w.String()))
}

type lockedSigner struct {
	w *Wallet
}

func (s lockedSigner) PublicKey() sign.PublicKey { return s.w.signer.PublicKey() }
func (s lockedSigner) Sign(data []byte) (sign.Signature, error) { return s.w.Sign(data) }
func (s lockedSigner) Scheme() sign.Scheme { return sign.SchemeEd25519 }

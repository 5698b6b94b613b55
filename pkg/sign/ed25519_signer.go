package sign

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// SeedSize is the length of the private material.
	SeedSize = ed25519.SeedSize
	// PublicKeySize is the length of the public material.
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize is the length of every signature.
	SignatureSize = ed25519.SignatureSize

	addressPrefix = "0x"
)

var (
	_ Signer    = (*Ed25519Signer)(nil)
	_ PublicKey = Ed25519PublicKey{}
	_ Address   = Ed25519Address("")
)

// Ed25519Address is "0x" followed by the hex of sha3-256(public key).
type Ed25519Address string

func (a Ed25519Address) String() string { return string(a) }

// Equals compares case-insensitively, so checksummed or upper-case input still matches.
func (a Ed25519Address) Equals(other Address) bool {
	if other == nil {
		return false
	}
	return strings.EqualFold(string(a), other.String())
}

// AddressFromPublicKey derives the address of a public key. It is a pure function of pub.
func AddressFromPublicKey(pub []byte) string {
	sum := sha3.Sum256(pub)
	return addressPrefix + hex.EncodeToString(sum[:])
}

// Ed25519PublicKey is a 32-byte Ed25519 public key.
type Ed25519PublicKey struct {
	key ed25519.PublicKey
}

// NewEd25519PublicKey copies pub after checking its length.
func NewEd25519PublicKey(pub []byte) (Ed25519PublicKey, error) {
	if len(pub) != PublicKeySize {
		return Ed25519PublicKey{}, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKeyMaterial, PublicKeySize, len(pub))
	}
	return Ed25519PublicKey{key: append(ed25519.PublicKey(nil), pub...)}, nil
}

func (p Ed25519PublicKey) Address() Address {
	return Ed25519Address(AddressFromPublicKey(p.key))
}

func (p Ed25519PublicKey) Bytes() []byte {
	return append([]byte(nil), p.key...)
}

func (p Ed25519PublicKey) Verify(data []byte, sig Signature) (bool, error) {
	return Verify(data, sig, p.key)
}

// Verify checks sig over message with pub.
// It fails with ErrMalformedInput on bad lengths and otherwise only reports validity.
func Verify(message []byte, sig Signature, pub []byte) (bool, error) {
	if len(sig) != SignatureSize {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrMalformedInput, SignatureSize, len(sig))
	}
	if len(pub) != PublicKeySize {
		return false, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrMalformedInput, PublicKeySize, len(pub))
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig), nil
}

// Ed25519Signer signs with a private key derived from a 32-byte seed.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  Ed25519PublicKey
}

// NewEd25519Signer derives the key pair from seed.
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", ErrInvalidKeyMaterial, SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Ed25519Signer{
		priv: priv,
		pub:  Ed25519PublicKey{key: priv.Public().(ed25519.PublicKey)},
	}, nil
}

func (s *Ed25519Signer) PublicKey() PublicKey { return s.pub }

func (s *Ed25519Signer) Scheme() Scheme { return SchemeEd25519 }

// Sign is deterministic for a given key and message.
func (s *Ed25519Signer) Sign(data []byte) (Signature, error) {
	return Signature(ed25519.Sign(s.priv, data)), nil
}

// Seed returns a copy of the private seed.
func (s *Ed25519Signer) Seed() []byte {
	return append([]byte(nil), s.priv.Seed()...)
}

// String never includes private material.
func (s *Ed25519Signer) String() string {
	return fmt.Sprintf("Ed25519Signer{address: %s, private: ***}", s.pub.Address())
}

// GoString never includes private material.
func (s *Ed25519Signer) GoString() string { return s.String() }

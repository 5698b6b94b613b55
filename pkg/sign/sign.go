package sign

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrInvalidKeyMaterial is returned when a seed or public key has the wrong length.
	ErrInvalidKeyMaterial = fmt.Errorf("invalid key material")
	// ErrMalformedInput is returned when a signature or public key handed to Verify has the wrong length.
	ErrMalformedInput = fmt.Errorf("malformed input")
)

// Signer produces signatures over arbitrary payloads.
type Signer interface {
	PublicKey() PublicKey                // Public key associated with this signer.
	Sign(data []byte) (Signature, error) // Sign signs data as is, without hashing it first.
	Scheme() Scheme                      // Scheme identifies the algorithm on the wire.
}

// Verifier checks signatures produced by the matching Signer.
type Verifier interface {
	Verify(data []byte, sig Signature) (bool, error)
}

// PublicKey is the public half of a signing identity.
type PublicKey interface {
	Verifier
	Address() Address
	Bytes() []byte
}

// Address is a ledger address derived from a public key.
type Address interface {
	fmt.Stringer

	// Equals returns true if this address equals the other address.
	Equals(other Address) bool
}

// Scheme identifies a signature algorithm.
type Scheme uint8

const (
	SchemeEd25519 Scheme = iota
	SchemeUnknown Scheme = 255
)

// String returns the tag the node expects next to a signature.
func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "Ed25519"
	default:
		return "Unknown"
	}
}

// Signature is a raw signature.
type Signature []byte

// Scheme guesses the scheme from the signature length.
func (s Signature) Scheme() Scheme {
	if len(s) == SignatureSize {
		return SchemeEd25519
	}
	return SchemeUnknown
}

// Base64 returns the standard base64 encoding used on the wire.
func (s Signature) Base64() string {
	return base64.StdEncoding.EncodeToString(s)
}

// String returns the 0x-prefixed hex form.
func (s Signature) String() string {
	return hexutil.Encode(s)
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
